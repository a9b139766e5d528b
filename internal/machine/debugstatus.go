package machine

import (
	"github.com/tclark/gsmac/internal/scc"
	"github.com/tclark/gsmac/internal/scsi"
	"github.com/tclark/gsmac/internal/via"
)

// DebugStatus is a read-only snapshot of the parts of machine state a
// debug front end wants to show once per refresh: CPU registers, the
// overlay latch, and the three peripherals a hung boot usually traces
// back to (VIA, SCC, SCSI).
type DebugStatus struct {
	D, A           [8]uint32
	PC             uint32
	SR             uint16
	OverlayEnabled bool
	Instructions   uint64
	Cycles         uint64

	VIA  via.State
	SCC  scc.State
	SCSI scsi.State
}

// Status gathers a DebugStatus from the machine's current state.
func (m *Machine) Status() DebugStatus {
	var st DebugStatus
	st.D, st.A, st.PC, st.SR = m.Registers()
	st.OverlayEnabled = m.overlayEnabled
	st.Instructions = m.sched.InstructionCount()
	st.Cycles = m.sched.CPUCycles()
	st.VIA = m.via.Snapshot()
	st.SCC = m.scc.Snapshot()
	st.SCSI = m.scsi.Snapshot()
	return st
}
