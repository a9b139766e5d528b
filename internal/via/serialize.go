package via

// State is the checkpoint-visible snapshot of a VIA, following the
// same plain-struct convention as cpu68k.State: a value type with no
// pointers, safe to encode directly.
type State struct {
	ORA, ORB, DDRA, DDRB uint8
	T1C, T1L             uint16
	T2C, T2L             uint16
	SR                   uint8
	ACR, PCR             uint8
	IFR, IER             uint8
	PB7                  bool
}

func (v *VIA) Snapshot() State {
	return State{
		ORA: v.ORA, ORB: v.ORB, DDRA: v.DDRA, DDRB: v.DDRB,
		T1C: v.T1C, T1L: v.T1L, T2C: v.T2C, T2L: v.T2L,
		SR: v.SR, ACR: v.ACR, PCR: v.PCR, IFR: v.IFR, IER: v.IER,
		PB7: v.pb7,
	}
}

func (v *VIA) Restore(s State) {
	v.ORA, v.ORB, v.DDRA, v.DDRB = s.ORA, s.ORB, s.DDRA, s.DDRB
	v.T1C, v.T1L, v.T2C, v.T2L = s.T1C, s.T1L, s.T2C, s.T2L
	v.SR, v.ACR, v.PCR, v.IFR, v.IER = s.SR, s.ACR, s.PCR, s.IFR, s.IER
	v.pb7 = s.PB7
	v.evaluateIRQ()
}
