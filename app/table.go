package app

import "wiohid/kernel"

// Task identifiers.
const (
	TaskUSB kernel.TaskID = iota
	TaskPWM
	TaskUSBOther
	TaskUSBSOF
	TaskUSBTrcpt0
	TaskUSBTrcpt1
	TaskBtnUp
	TaskBtnLeft
	TaskBtnRight
	TaskBtnDown
	TaskBtnClick
	TaskBtnTopLeft
	TaskBtnTopMiddle
	TaskSettle
	TaskSerialRx
	TaskButton
	TaskPrint
	TaskBlinky
)

// Resource identifiers.
const (
	ResUSBHID kernel.ResourceID = iota
	ResBacklight
	ResButtonCtr
	ResSerial
	ResReport
	ResTerminal
	ResUserLED
)

// Interrupt lines. Button lines use their external interrupt channel
// numbers, see buttons.ExtInt.
const (
	IRQUSBOther  kernel.IRQ = 20
	IRQUSBSOF    kernel.IRQ = 21
	IRQUSBTrcpt0 kernel.IRQ = 22
	IRQUSBTrcpt1 kernel.IRQ = 23

	IRQSerial kernel.IRQ = 30
)

// Priorities.
const (
	PrioUSB       kernel.Priority = 10
	PrioPWM       kernel.Priority = 9
	PrioInterrupt kernel.Priority = 4
	PrioButton    kernel.Priority = 3
	PrioPrint     kernel.Priority = 2
	PrioBlinky    kernel.Priority = 1
)

var (
	buttonTasks = [7]kernel.TaskID{TaskBtnUp, TaskBtnLeft, TaskBtnRight, TaskBtnDown, TaskBtnClick, TaskBtnTopLeft, TaskBtnTopMiddle}
	usbTasks    = [4]kernel.TaskID{TaskUSBOther, TaskUSBSOF, TaskUSBTrcpt0, TaskUSBTrcpt1}
	usbIRQs     = [4]kernel.IRQ{IRQUSBOther, IRQUSBSOF, IRQUSBTrcpt0, IRQUSBTrcpt1}
)
