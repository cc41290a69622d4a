//go:build tinygo && wioterminal

package hal

import (
	"image/color"
	"machine"
	"machine/usb"
	"machine/usb/descriptor"
	"machine/usb/hid"
	"runtime/volatile"
	"time"
	"unsafe"

	"tinygo.org/x/drivers/ili9341"

	"wiohid/kernel"
	hidsvc "wiohid/services/hid"
)

// CPUHz is the SAMD51 core clock.
const CPUHz = 120_000_000

type wioHAL struct {
	logger    *uartLogger
	clock     *cycleClock
	led       *pinLED
	backlight *pinLED
	buttons   [ButtonCount]*wioButton
	panel     *ili9341.Device
	usb       *wioUSB
	serial    *wioSerial
}

// New returns the Wio Terminal HAL implementation.
//
// Log output goes to the default UART at 115200 8N1; the text port is the
// USB CDC serial interface.
func New() HAL {
	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	bl := machine.LCD_BACKLIGHT
	bl.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.SPI3.Configure(machine.SPIConfig{
		SCK:       machine.LCD_SCK_PIN,
		SDO:       machine.LCD_SDO_PIN,
		SDI:       machine.LCD_SDI_PIN,
		Frequency: 48_000_000,
	})
	panel := ili9341.NewSPI(machine.SPI3, machine.LCD_DC, machine.LCD_SS_PIN, machine.LCD_RESET)
	panel.Configure(ili9341.Config{})
	panel.SetRotation(ili9341.Rotation270)
	panel.SetScrollArea(0, 0)
	panel.FillScreen(color.RGBA{A: 0xFF})

	usb.VendorID = 0x16c0
	usb.ProductID = 0x27dd
	usb.Manufacturer = "wiohid"
	usb.Product = "Wio HID"
	descriptor.CDCHID = usbDescriptor

	h := &wioHAL{
		logger:    &uartLogger{uart: uart},
		clock:     newCycleClock(),
		led:       &pinLED{pin: ledPin},
		backlight: &pinLED{pin: bl},
		panel:     panel,
		usb:       newWioUSB(),
		serial:    &wioSerial{},
	}
	pins := [ButtonCount]machine.Pin{
		machine.WIO_5S_UP,
		machine.WIO_5S_LEFT,
		machine.WIO_5S_RIGHT,
		machine.WIO_5S_DOWN,
		machine.WIO_5S_PRESS,
		machine.WIO_KEY_C,
		machine.WIO_KEY_B,
	}
	for i, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		h.buttons[i] = &wioButton{pin: p}
	}
	return h
}

func (h *wioHAL) Logger() Logger       { return h.logger }
func (h *wioHAL) Clock() kernel.Clock  { return h.clock }
func (h *wioHAL) LED() LED             { return h.led }
func (h *wioHAL) Backlight() Backlight { return h.backlight }
func (h *wioHAL) Panel() Panel         { return h.panel }
func (h *wioHAL) USB() USB             { return h.usb }
func (h *wioHAL) Serial() Serial       { return h.serial }

// PollInterval is one USB frame. Pin and USB callbacks run in interrupt
// context and may not touch channels.
func (h *wioHAL) PollInterval() time.Duration { return time.Millisecond }

func (h *wioHAL) Button(i int) ButtonPin {
	if i < 0 || i >= ButtonCount {
		return nil
	}
	return h.buttons[i]
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High()            { l.pin.High() }
func (l *pinLED) Low()             { l.pin.Low() }
func (l *pinLED) SetLevel(on bool) { l.pin.Set(on) }

// wioButton is an active-low switch with a pull-up.
type wioButton struct {
	pin machine.Pin
}

func (b *wioButton) Pressed() bool { return !b.pin.Get() }

func (b *wioButton) SetInterrupt(fn func()) error {
	return b.pin.SetInterrupt(machine.PinToggle, func(machine.Pin) { fn() })
}

// Cortex-M debug registers for the DWT cycle counter.
var (
	demcr    = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE000EDFC)))
	dwtCtrl  = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE0001000)))
	dwtCycle = (*volatile.Register32)(unsafe.Pointer(uintptr(0xE0001004)))
)

type cycleClock struct {
	fn    func()
	timer *time.Timer
}

func newCycleClock() *cycleClock {
	demcr.SetBits(1 << 24)
	dwtCycle.Set(0)
	dwtCtrl.SetBits(1)
	return &cycleClock{}
}

func (c *cycleClock) Now() kernel.Instant { return kernel.Instant(dwtCycle.Get()) }

func (c *cycleClock) OnWake(fn func()) { c.fn = fn }

func (c *cycleClock) WakeAt(at kernel.Instant) {
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.fn == nil {
		return
	}
	now := c.Now()
	if at.Reached(now) {
		go c.fn()
		return
	}
	d := time.Duration(uint64(at.Sub(now)) * uint64(time.Second) / CPUHz)
	c.timer = time.AfterFunc(d, c.fn)
}

func newWioUSB() *wioUSB {
	u := &wioUSB{}
	hid.SetHandler(u)
	return u
}

// usbDescriptor is the CDC plus HID composite device carrying the input
// report layout of the hid service.
var usbDescriptor = descriptor.Descriptor{
	Device: descriptor.DeviceCDC.Bytes(),
	Configuration: descriptor.Append([][]byte{
		descriptor.ConfigurationCDCHID.Bytes(),
		descriptor.InterfaceAssociationCDC.Bytes(),
		descriptor.InterfaceCDCControl.Bytes(),
		descriptor.ClassSpecificCDCHeader.Bytes(),
		descriptor.ClassSpecificCDCACM.Bytes(),
		descriptor.ClassSpecificCDCUnion.Bytes(),
		descriptor.ClassSpecificCDCCallManagement.Bytes(),
		descriptor.EndpointEP1IN.Bytes(),
		descriptor.InterfaceCDCData.Bytes(),
		descriptor.EndpointEP2OUT.Bytes(),
		descriptor.EndpointEP3IN.Bytes(),
		descriptor.InterfaceHID.Bytes(),
		func() []byte {
			class := descriptor.ClassHID.Bytes()
			class[7] = byte(len(hidsvc.ReportDescriptor))
			class[8] = byte(len(hidsvc.ReportDescriptor) >> 8)
			return class
		}(),
		descriptor.EndpointEP4IN.Bytes(),
		descriptor.EndpointEP5OUT.Bytes(),
	}),
	HID: map[uint16][]byte{
		usb.HID_INTERFACE: hidsvc.ReportDescriptor,
	},
}

// wioUSB sends reports through the TinyGo HID endpoint. One report may be
// in flight; the transmit-complete callback raises the TRCPT1 line. The
// device stack is serviced by the runtime, so Poll has nothing to do and
// the frame interrupt is paced by a timer.
type wioUSB struct {
	irq     [USBLineCount]func()
	sof     bool
	waitTxc volatile.Register8
}

func (u *wioUSB) PushInput(report []byte) error {
	if !machine.USBDev.InitEndpointComplete || u.waitTxc.Get() != 0 {
		return hidsvc.ErrBusy
	}
	u.waitTxc.Set(1)
	hid.SendUSBPacket(report)
	return nil
}

// TxHandler is called by the USB interrupt when the endpoint is free.
func (u *wioUSB) TxHandler() bool {
	u.waitTxc.Set(0)
	if fn := u.irq[USBTransferComplete1]; fn != nil {
		fn()
	}
	return false
}

// RxHandler ignores output reports; the keyboard LEDs are not driven.
func (u *wioUSB) RxHandler(b []byte) bool { return false }

func (u *wioUSB) Poll() {}

func (u *wioUSB) SetInterrupt(line USBLine, fn func()) {
	if line >= USBLineCount {
		return
	}
	u.irq[line] = fn
	if line == USBStartOfFrame && fn != nil && !u.sof {
		u.sof = true
		go func() {
			for {
				time.Sleep(time.Millisecond)
				if f := u.irq[USBStartOfFrame]; f != nil {
					f()
				}
			}
		}()
	}
}

// wioSerial is the USB CDC port. The runtime buffers received bytes, so
// the receive interrupt is emulated by polling the buffer.
type wioSerial struct {
	irq func()
}

func (s *wioSerial) Buffered() int               { return machine.Serial.Buffered() }
func (s *wioSerial) ReadByte() (byte, error)     { return machine.Serial.ReadByte() }
func (s *wioSerial) Write(p []byte) (int, error) { return machine.Serial.Write(p) }

func (s *wioSerial) SetInterrupt(fn func()) {
	start := s.irq == nil
	s.irq = fn
	if !start {
		return
	}
	go func() {
		for {
			time.Sleep(time.Millisecond)
			if machine.Serial.Buffered() > 0 && s.irq != nil {
				s.irq()
			}
		}
	}()
}
