package nes

// Reference:
//   https://www.nesdev.org/wiki/Controller_reading
//   https://www.nesdev.org/wiki/Controller_reading_code

type button int

// Controller bit assignments, 1 means pressed otherwise 0.
const (
	ButtonA button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

type Controller struct {
	buttons [8]bool
	index   byte
	strobe  byte
}

func NewController() *Controller {
	return &Controller{}
}

// Set latches the host-polled button states.
func (c *Controller) Set(buttons [8]bool) {
	c.buttons = buttons
}

// read shifts out one button bit. Reads past the 8th button return 1 until
// the strobe is pulsed again.
func (c *Controller) read() byte {
	if c.index > 7 {
		return 1
	}
	ret := byte(0)
	if c.buttons[c.index] {
		ret = 1
	}
	if c.strobe&1 == 0 {
		c.index++
	}
	return ret
}

// write sets the strobe.
// - strobe bit on: the controller reports only button A on every read
// - strobe bit off: the controller cycles through all buttons
func (c *Controller) write(data byte) {
	c.strobe = data
	if c.strobe&1 == 1 {
		c.index = 0
	}
}
