package hal

import (
	"sync"
)

// virtualButton is a button whose level is driven by software: a window
// key, a script or a test.
type virtualButton struct {
	mu      sync.Mutex
	name    string
	pressed bool
	irq     func()
}

func newVirtualButton(name string) *virtualButton {
	return &virtualButton{name: name}
}

func (b *virtualButton) Name() string { return b.name }

func (b *virtualButton) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pressed
}

func (b *virtualButton) SetInterrupt(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.irq = fn
	return nil
}

// set changes the level and raises the edge interrupt on a change.
func (b *virtualButton) set(pressed bool) {
	b.mu.Lock()
	changed := b.pressed != pressed
	b.pressed = pressed
	irq := b.irq
	b.mu.Unlock()

	if changed && irq != nil {
		irq()
	}
}

// bounce toggles the level n times before settling on pressed, raising an
// interrupt per edge, like a worn mechanical switch.
func (b *virtualButton) bounce(pressed bool, n int) {
	for i := 0; i < n; i++ {
		b.set(!b.Pressed())
	}
	b.set(pressed)
}

// levelPin records the level of an output and reports changes to an
// observer.
type levelPin struct {
	mu       sync.Mutex
	name     string
	level    bool
	changes  uint64
	onChange func(name string, level bool)
}

func newLevelPin(name string, onChange func(string, bool)) *levelPin {
	return &levelPin{name: name, onChange: onChange}
}

func (p *levelPin) High()            { p.SetLevel(true) }
func (p *levelPin) Low()             { p.SetLevel(false) }
func (p *levelPin) SetLevel(on bool) { p.write(on) }

func (p *levelPin) write(level bool) {
	p.mu.Lock()
	changed := p.level != level
	p.level = level
	if changed {
		p.changes++
	}
	cb := p.onChange
	p.mu.Unlock()

	if changed && cb != nil {
		cb(p.name, level)
	}
}

// Level returns the current output level.
func (p *levelPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Changes returns the number of level transitions so far.
func (p *levelPin) Changes() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes
}
