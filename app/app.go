// Package app assembles the system table: tasks, resources, priorities and
// interrupt bindings, on top of a hal.HAL.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wiohid/hal"
	"wiohid/internal/log"
	"wiohid/kernel"
	"wiohid/services/buttons"
	"wiohid/services/hid"
	"wiohid/services/term"
	"wiohid/tasks/backlight"
	"wiohid/tasks/blinky"
	"wiohid/tasks/dispatch"
	"wiohid/tasks/serialrx"
	"wiohid/tasks/usb"
)

// Banner is written to the panel at boot.
const Banner = "Hello! Send text to me over the USB serial port, and I'll display it!\n" +
	"\n" +
	"On linux:\n" +
	"  sudo stty -F /dev/ttyACM0 115200 raw -echo\n" +
	"  sudo bash -c \"echo 'Hi' > /dev/ttyACM0\"\n"

// App is one assembled system.
type App struct {
	h   hal.HAL
	cfg Config
	log *slog.Logger
	k   *kernel.Kernel

	terminal *kernel.Resource[term.Terminal]
	report   *kernel.Resource[hid.Report]
	port     *kernel.Resource[hid.Port]
	receiver *serialrx.Receiver

	// pend raises an interrupt line from a hardware callback.
	pend func(kernel.IRQ) bool
}

// New validates cfg and builds the kernel for h. Nothing runs until Run.
func New(h hal.HAL, cfg Config) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lvl, _ := ParseLevel(cfg.LogLevel)
	log.SetLevel(lvl)

	root := log.New(h.Logger())
	a := &App{h: h, cfg: cfg, log: log.For(root, log.ComponentApp)}

	var pins [buttons.Count]buttons.Pin
	for i := range pins {
		if p := h.Button(i); p != nil {
			pins[i] = p
		}
	}

	a.port = kernel.NewResource(ResUSBHID, "usb_hid", hid.NewPort(h.USB()))
	light := kernel.NewResource(ResBacklight, "backlight", backlight.State{Pin: h.Backlight(), On: true})
	ctrl := kernel.NewResource(ResButtonCtr, "button_ctr", buttons.NewController(cfg.Cycles(cfg.SettleWindow), pins))
	serial := kernel.NewResource[serialrx.Port](ResSerial, "serial", h.Serial())
	a.report = kernel.NewResource(ResReport, "report", hid.Report{})
	a.terminal = kernel.NewResource(ResTerminal, "terminal", term.New(term.NewPanelDisplay(h.Panel())))
	led := kernel.NewResource(ResUserLED, "user_led", blinky.State{LED: h.LED()})

	pipeline := &buttons.Pipeline{
		Controller: ctrl,
		LineTasks:  buttonTasks,
		Settle:     TaskSettle,
		Dispatch:   TaskButton,
		Priority:   PrioInterrupt,
		Logger:     root,
	}
	for b := range pipeline.IRQs {
		pipeline.IRQs[b] = kernel.IRQ(buttons.ExtInt[b])
	}
	wiring := &usb.Wiring{
		Port:         a.port,
		Poll:         TaskUSB,
		PollPriority: PrioUSB,
		LineTasks:    usbTasks,
		IRQs:         usbIRQs,
		LinePriority: PrioInterrupt,
	}
	dispatcher := &dispatch.Dispatcher{Report: a.report, Port: a.port, Print: TaskPrint, Logger: root}
	a.receiver = &serialrx.Receiver{Port: serial, Print: TaskPrint, Logger: root}

	specs := wiring.Specs()
	specs = append(specs, backlight.Spec(TaskPWM, PrioPWM, light))
	specs = append(specs, pipeline.Specs()...)
	specs = append(specs,
		a.receiver.Spec(TaskSerialRx, PrioInterrupt, IRQSerial),
		dispatcher.Spec(TaskButton, PrioButton, cfg.DispatchCapacity),
		term.PrintTask(TaskPrint, PrioPrint, cfg.PrintCapacity, a.terminal),
		blinky.Spec(TaskBlinky, PrioBlinky, led, blinky.Period),
	)

	var poll time.Duration
	if p, ok := h.(hal.Polled); ok {
		poll = p.PollInterval()
	}
	k, err := kernel.New(kernel.Config{
		Clock:        h.Clock(),
		Tasks:        specs,
		Resources:    []kernel.Shared{a.port, light, ctrl, serial, a.report, a.terminal, led},
		Logger:       root,
		OnFault:      a.onFault,
		PollInterval: poll,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.k = k
	a.pend = k.Pend
	if poll > 0 {
		a.pend = k.MarkPending
	}
	return a, nil
}

// Kernel returns the scheduler of the system.
func (a *App) Kernel() *kernel.Kernel { return a.k }

// Start runs init and connects the hardware interrupt sources.
func (a *App) Start() error {
	if err := a.k.Start(a.init); err != nil {
		return err
	}
	a.connect()
	a.log.Info("started", "tasks", len(a.k.Stats()))
	return nil
}

// Run starts the system and services it until ctx ends or a fault halts
// the kernel.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	err := a.k.Run(ctx)
	a.logStats()
	return err
}

func (a *App) init(cx *kernel.Context) {
	var err error
	a.terminal.Lock(cx, func(t *term.Terminal) {
		if err = t.Reset(); err != nil {
			return
		}
		if a.cfg.Banner {
			err = t.WriteString(cx, Banner)
		}
	})
	if err != nil {
		cx.Fault(err)
	}
	cx.Schedule(TaskBlinky, cx.Scheduled().Add(blinky.Period), kernel.Message{})
	cx.Spawn(TaskPWM, kernel.Message{})
}

// connect routes every interrupt source to its pending flag. Handlers run
// outside the kernel and only pend.
func (a *App) connect() {
	for b := buttons.Button(0); b < buttons.Count; b++ {
		p := a.h.Button(int(b))
		if p == nil {
			continue
		}
		irq := kernel.IRQ(buttons.ExtInt[b])
		if err := p.SetInterrupt(func() { a.pend(irq) }); err != nil {
			a.log.Warn("button interrupt unavailable", "button", b.String(), "err", err)
		}
	}
	if u := a.h.USB(); u != nil {
		for i, irq := range usbIRQs {
			u.SetInterrupt(hal.USBLine(i), func() { a.pend(irq) })
		}
	}
	if s := a.h.Serial(); s != nil {
		s.SetInterrupt(func() { a.pend(IRQSerial) })
	}
}

func (a *App) logStats() {
	for _, st := range a.k.Stats() {
		if st.Dropped == 0 && st.Activations == 0 {
			continue
		}
		a.log.Info("task", "name", st.Name, "prio", st.Priority, "runs", st.Activations, "dropped", st.Dropped)
	}
	if a.receiver.Dropped() > 0 {
		a.log.Info("serial", "dropped_segments", a.receiver.Dropped())
	}
}
