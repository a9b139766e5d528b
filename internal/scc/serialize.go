package scc

// ChannelState is the checkpoint-visible snapshot of one channel.
// Pending frames are included as raw byte slices so a restored
// channel resumes mid-queue exactly where it left off.
type ChannelState struct {
	WR            [16]uint8
	SelectedReg   uint8
	RxEnabled     bool
	Hunting       bool
	DCD           bool
	ExtIntEnabled bool
	Staging       []byte
	StagingPos    int
	Frames        [][]byte
	Overflow      int
}

// State is the checkpoint-visible snapshot of the whole SCC.
type State struct {
	A, B ChannelState
}

func (c *channel) snapshot() ChannelState {
	frames := make([][]byte, len(c.frames))
	for i, f := range c.frames {
		frames[i] = append([]byte(nil), f...)
	}
	return ChannelState{
		WR: c.wr, SelectedReg: c.selectedReg,
		RxEnabled: c.rxEnabled, Hunting: c.hunting,
		DCD: c.dcd, ExtIntEnabled: c.extIntEnabled,
		Staging:    append([]byte(nil), c.staging...),
		StagingPos: c.stagingPos,
		Frames:     frames,
		Overflow:   c.overflow,
	}
}

func (c *channel) restore(s ChannelState) {
	c.wr = s.WR
	c.selectedReg = s.SelectedReg
	c.rxEnabled = s.RxEnabled
	c.hunting = s.Hunting
	c.dcd = s.DCD
	c.extIntEnabled = s.ExtIntEnabled
	c.staging = append([]byte(nil), s.Staging...)
	c.stagingPos = s.StagingPos
	c.frames = make([][]byte, len(s.Frames))
	for i, f := range s.Frames {
		c.frames[i] = append([]byte(nil), f...)
	}
	c.overflow = s.Overflow
}

func (s *SCC) Snapshot() State {
	return State{A: s.A.snapshot(), B: s.B.snapshot()}
}

func (s *SCC) Restore(st State) {
	s.A.restore(st.A)
	s.B.restore(st.B)
	s.evaluateIRQ()
}
