package rtc

// State is the checkpoint-visible RTC snapshot: the second counter
// and full parameter RAM persist across checkpoint boundaries, as the
// spec requires, while the in-progress shift state does not (a
// checkpoint never lands mid-bit-bang in practice, since the VIA
// isn't mid-transfer at a sprint boundary).
type State struct {
	Seconds      uint32
	PRAM         [pramSize]byte
	WriteProtect bool
}

func (r *RTC) Snapshot() State {
	return State{Seconds: r.Seconds, PRAM: r.PRAM, WriteProtect: r.writeProtect}
}

func (r *RTC) Restore(s State) {
	r.Seconds = s.Seconds
	r.PRAM = s.PRAM
	r.writeProtect = s.WriteProtect
}
