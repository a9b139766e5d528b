package machine

import "github.com/tclark/gsmac/internal/scc"

// KeyEvent delivers one keyboard transition to the VIA's shift
// register: the Plus keyboard is a synchronous serial device clocked
// through VIA CB1/CB2 and the SR, so a keystroke becomes a byte
// latched into SR followed by a CB1 pulse, the same handshake the
// ROM's keyboard driver expects.
func (m *Machine) KeyEvent(code uint8, down bool) {
	b := code << 1
	if !down {
		b |= 1
	}
	m.via.SR = b
	m.via.RaiseCB1()
}

// MouseMove reports one quadrature step on each axis; the Plus mouse
// drives its X/Y quadrature directly onto VIA CA1/CA2 (pulsed once
// per detent) while the button state rides the SCC Channel B DCD
// line.
func (m *Machine) MouseMove(dx, dy int) {
	for i := 0; i < abs(dx); i++ {
		m.via.RaiseCA1()
	}
	for i := 0; i < abs(dy); i++ {
		m.via.RaiseCA2()
	}
}

// MouseButton reports the mouse button's current level to the SCC's
// DCD-based mouse path.
func (m *Machine) MouseButton(down bool) {
	m.mouseButton = down
	m.scc.MouseStep(scc.ChannelB, down)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
