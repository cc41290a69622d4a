package hid

// ReportDescriptor declares the composite input report: a keyboard
// application collection carrying modifier, LED and key array fields, with
// a nested pointer collection for buttons and relative motion.
var ReportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0xE0, //   Usage Minimum (Left Control)
	0x29, 0xE7, //   Usage Maximum (Right GUI)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute) - Modifier byte
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (Num Lock)
	0x29, 0x05, //   Usage Maximum (Kana)
	0x95, 0x05, //   Report Count (5)
	0x81, 0x02, //   Input (Data, Variable, Absolute) - LED bits
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x81, 0x01, //   Input (Constant) - Padding
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0x65, //   Usage Maximum (0x65)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x65, //   Logical Maximum (0x65)
	0x75, 0x08, //   Report Size (8)
	0x95, 0x06, //   Report Count (6)
	0x81, 0x00, //   Input (Data, Array, Absolute) - Key array
	0x05, 0x01, //   Usage Page (Generic Desktop)
	0x09, 0x01, //   Usage (Pointer)
	0xA1, 0x00, //   Collection (Physical)
	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (Button 1)
	0x29, 0x03, //     Usage Maximum (Button 3)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x75, 0x01, //     Report Size (1)
	0x95, 0x03, //     Report Count (3)
	0x81, 0x02, //     Input (Data, Variable, Absolute) - Button bits
	0x95, 0x01, //     Report Count (1)
	0x75, 0x05, //     Report Size (5)
	0x81, 0x01, //     Input (Constant) - Padding
	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x30, //     Usage (X)
	0x09, 0x31, //     Usage (Y)
	0x15, 0x81, //     Logical Minimum (-127)
	0x25, 0x7F, //     Logical Maximum (127)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x02, //     Report Count (2)
	0x81, 0x06, //     Input (Data, Variable, Relative) - X, Y
	0xC0, //   End Collection
	0xC0, // End Collection
}

// InputBits sums Report Size x Report Count over every Input item of a
// short-item report descriptor.
func InputBits(desc []byte) int {
	var size, count, bits int
	for i := 0; i < len(desc); {
		prefix := desc[i]
		n := int(prefix & 0x03)
		if n == 3 {
			n = 4
		}
		if i+1+n > len(desc) {
			break
		}
		var v int
		for j := 0; j < n; j++ {
			v |= int(desc[i+1+j]) << (8 * j)
		}
		switch prefix &^ 0x03 {
		case 0x74: // Report Size
			size = v
		case 0x94: // Report Count
			count = v
		case 0x80: // Input
			bits += size * count
		}
		i += 1 + n
	}
	return bits
}
