package hid

// Keyboard modifier bits.
const (
	ModLeftCtrl   = 1 << 0
	ModLeftShift  = 1 << 1
	ModLeftAlt    = 1 << 2
	ModLeftGUI    = 1 << 3
	ModRightCtrl  = 1 << 4
	ModRightShift = 1 << 5
	ModRightAlt   = 1 << 6
	ModRightGUI   = 1 << 7
)

// Keyboard LED bits.
const (
	LEDNumLock    = 1 << 0
	LEDCapsLock   = 1 << 1
	LEDScrollLock = 1 << 2
	LEDCompose    = 1 << 3
	LEDKana       = 1 << 4
)

// Pointer button bits.
const (
	ButtonLeft   = 1 << 0
	ButtonRight  = 1 << 1
	ButtonMiddle = 1 << 2
)

// Keycodes from the USB HID keyboard usage page.
const (
	KeyNone       = 0x00
	KeyA          = 0x04
	KeyB          = 0x05
	KeyC          = 0x06
	KeyD          = 0x07
	KeyE          = 0x08
	KeyF          = 0x09
	Key1          = 0x1E
	Key2          = 0x1F
	Key3          = 0x20
	KeyEnter      = 0x28
	KeyEscape     = 0x29
	KeyBackspace  = 0x2A
	KeyTab        = 0x2B
	KeySpace      = 0x2C
	KeyF1         = 0x3A
	KeyF2         = 0x3B
	KeyF3         = 0x3C
	KeyPageUp     = 0x4B
	KeyPageDown   = 0x4E
	KeyRightArrow = 0x4F
	KeyLeftArrow  = 0x50
	KeyDownArrow  = 0x51
	KeyUpArrow    = 0x52

	// KeyMax is the highest usage declared in the key array.
	KeyMax = 0x65
)
