package scsi

// TargetState is the checkpoint-visible state of one attached disk:
// the storage handle itself is reopened by the orchestration layer
// from its image path, so only the protocol-visible latch state
// round-trips here.
type TargetState struct {
	Sense         [3]uint8
	UnitAttention bool
	Ready         bool
	WriteProtect  bool
}

func (t *Target) Snapshot() TargetState {
	return TargetState{
		Sense:         [3]uint8{t.sense.key, t.sense.asc, t.sense.ascq},
		UnitAttention: t.unitAttention,
		Ready:         t.ready,
		WriteProtect:  t.WriteProtect,
	}
}

func (t *Target) Restore(s TargetState) {
	t.sense = senseData{key: s.Sense[0], asc: s.Sense[1], ascq: s.Sense[2]}
	t.unitAttention = s.UnitAttention
	t.ready = s.Ready
	t.WriteProtect = s.WriteProtect
}

// State is the controller-level checkpoint snapshot; targets
// checkpoint independently since the orchestration layer owns the
// mapping from SCSI ID to image path.
type State struct {
	ICR          uint8
	Mode         uint8
	TCR          uint8
	DataLatch    uint8
	SelectEnable uint8
	Phase        Phase
	SelectedID   int
	LastStatus   uint8
}

func (c *Controller) Snapshot() State {
	return State{
		ICR: c.icr, Mode: c.mode, TCR: c.tcr, DataLatch: c.dataLatch,
		SelectEnable: c.selectEnable, Phase: c.phase, SelectedID: c.selectedID,
		LastStatus: c.lastStatus,
	}
}

func (c *Controller) Restore(s State) {
	c.icr, c.mode, c.tcr, c.dataLatch = s.ICR, s.Mode, s.TCR, s.DataLatch
	c.selectEnable, c.phase, c.selectedID = s.SelectEnable, s.Phase, s.SelectedID
	c.lastStatus = s.LastStatus
}
