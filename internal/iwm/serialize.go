package iwm

// DriveState is the checkpoint-visible snapshot of one drive.
type DriveState struct {
	Track, Head      int
	MotorOn          bool
	Inserted         bool
	WriteProtect     bool
}

// State is the checkpoint-visible snapshot of the IWM and both drives.
// The inserted disk's block contents are not part of this state - the
// storage engine's own checkpoint entry (or the `.blocks/` tree
// itself in quick-checkpoint mode) owns that data.
type State struct {
	CA0, CA1, CA2          bool
	LSTRB, Enable, Select  bool
	Q6, Q7                 bool
	ModeReg, StatusReg     uint8
	WriteReg               uint8
	Drives                 [2]DriveState
}

func (m *IWM) Snapshot() State {
	var s State
	s.CA0, s.CA1, s.CA2 = m.CA0, m.CA1, m.CA2
	s.LSTRB, s.Enable, s.Select = m.LSTRB, m.Enable, m.Select
	s.Q6, s.Q7 = m.Q6, m.Q7
	s.ModeReg, s.StatusReg, s.WriteReg = m.ModeReg, m.statusReg, m.writeReg
	for i, d := range m.Drives {
		s.Drives[i] = DriveState{
			Track: d.Track, Head: d.Head, MotorOn: d.MotorOn,
			Inserted: d.Inserted, WriteProtect: d.WriteProtect,
		}
	}
	return s
}

func (m *IWM) Restore(s State) {
	m.CA0, m.CA1, m.CA2 = s.CA0, s.CA1, s.CA2
	m.LSTRB, m.Enable, m.Select = s.LSTRB, s.Enable, s.Select
	m.Q6, m.Q7 = s.Q6, s.Q7
	m.ModeReg, m.statusReg, m.writeReg = s.ModeReg, s.StatusReg, s.WriteReg
	for i := range m.Drives {
		d := m.Drives[i]
		ds := s.Drives[i]
		d.Track, d.Head, d.MotorOn = ds.Track, ds.Head, ds.MotorOn
		d.Inserted, d.WriteProtect = ds.Inserted, ds.WriteProtect
	}
}
