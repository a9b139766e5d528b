package machine

import (
	"github.com/tclark/gsmac/internal/disasm"
	"github.com/tclark/gsmac/internal/sound"
)

// SetSoundSink installs the host audio callback invoked once per VBL.
func (m *Machine) SetSoundSink(sink sound.Sink) { m.sound.SetSink(sink) }

// Reset re-enables the ROM overlay and resets the CPU, the same
// sequence the real hardware's reset line drives: with ROM visible at
// address 0 the CPU's initial SSP/PC fetch reads the boot vectors out
// of ROM rather than whatever RAM happened to contain.
func (m *Machine) Reset() {
	m.setOverlay(true)
	m.cpu.Reset()
}

// Start arms the scheduler so RunOneIteration actually executes CPU
// sprints instead of only draining already-due events.
func (m *Machine) Start() { m.sched.Start() }

// Stop halts CPU execution; RunOneIteration still drains due events
// (timers already in flight keep firing) but stops running sprints.
func (m *Machine) Stop() { m.sched.Stop() }

// RunOneIteration advances the machine by one host frame's worth of
// emulated time (a VBL's worth of cycles in unbounded/accurate modes,
// or a wall-clock-scaled slice in live mode), delegating entirely to
// the scheduler's own pacing logic.
func (m *Machine) RunOneIteration(hostTimeMs float64) {
	m.sched.RunOneIteration(hostTimeMs)
}

// InstructionCount reports the total number of M68000 instructions
// retired so far, used by the boot-progress scenario.
func (m *Machine) InstructionCount() uint64 { return m.sched.InstructionCount() }

// CPUCycles reports the total emulated CPU cycle count.
func (m *Machine) CPUCycles() uint64 { return m.sched.CPUCycles() }

// PC returns the CPU's current program counter, used by the boot and
// floppy-boot scenarios to confirm execution has left the ROM.
func (m *Machine) PC() uint32 { return m.cpu.PC }

// OverlayEnabled reports whether the ROM overlay currently shadows
// low memory, for the debug view's status line.
func (m *Machine) OverlayEnabled() bool { return m.overlayEnabled }

// Registers returns the CPU's data/address register files and status
// register, for the debug view's register panel.
func (m *Machine) Registers() (d, a [8]uint32, pc uint32, sr uint16) {
	return m.cpu.D, m.cpu.A, m.cpu.PC, m.cpu.SR
}

// NextInstructions disassembles count instructions starting at the
// CPU's current PC, for the debug view's disassembly panel.
func (m *Machine) NextInstructions(count int) []disasm.Instruction {
	return disasm.Disassemble(m.mem, m.cpu.PC, count)
}

// Step executes exactly one CPU instruction and reports whether the
// CPU is still running afterward (false means it has halted on a
// double fault; a STOPped CPU still reports true), for the debug
// view's single-step command.
func (m *Machine) Step() bool { return m.cpu.RunInstruction() }
