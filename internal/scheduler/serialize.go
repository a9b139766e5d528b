package scheduler

// State is the checkpoint-visible scheduler snapshot: the cycle and
// instruction counters and the current timing mode. The pending event
// queue itself is not part of this snapshot - each event's source is
// an opaque pointer into a peripheral that the orchestration layer
// reconstructs independently, so queue entries cannot be named
// portably across a process restart. Restore empties the queue. The
// machine's checkpoint Load re-arms its own periodic VBL and RTC-tick
// events afterwards, one full period from the restored time; events a
// device had in flight at save time (VIA timer and shift-register
// events, SCC byte delivery, IWM settle and spin-up) are not
// re-created.
type State struct {
	Cycles       uint64
	Instructions uint64
	Mode         Mode
}

func (s *Scheduler) Snapshot() State {
	return State{Cycles: s.cyclesCounter, Instructions: s.totalInstructions, Mode: s.mode}
}

func (s *Scheduler) Restore(st State) {
	s.cyclesCounter = st.Cycles
	s.totalInstructions = st.Instructions
	s.mode = st.Mode
	s.head = nil
	s.sprintTotal = 0
	s.sprintBurndown = 0
}
