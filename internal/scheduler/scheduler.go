/*
   gsmac scheduler: event queue and CPU sprint loop.

   Copyright (c) 2026, gsmac project contributors

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package scheduler coordinates emulated time, CPU execution sprints
// and device events. Unlike a priority heap keyed by absolute
// timestamp, events are kept in a time-ordered linked list where each
// node stores its delay relative to the previous node - the same
// representation the teacher's event queue uses, which makes
// insertion and "is anything due" O(1) amortized for the common case
// of a handful of outstanding events.
package scheduler

import (
	"errors"
	"log/slog"
)

// Mode selects the relationship between CPU cycles and wall-clock
// time.
type Mode int

const (
	ModeUnbounded Mode = iota
	ModeHardwareAccurate
	ModeWallClockLive
)

const (
	cpiUnbounded      = 4
	cpiHardwareAccurate = 12

	// maxQueueLen is the sanity bound from the data model: a runaway
	// scheduling bug (an event that reschedules itself with delta=0
	// forever) trips this instead of exhausting memory silently.
	maxQueueLen = 10_000
)

// Callback fires when an event's timestamp is reached. source is the
// opaque pointer supplied at schedule time, used for cancellation by
// source match; data is the event's integer payload.
type Callback func(data int64)

// EventTypeID names a callback for checkpoint serialization: the
// callback function pointer itself cannot survive a process restart,
// so every schedulable callback is registered once under a stable
// name (see RegisterEventType). Pending events are not written into a
// checkpoint: State carries no queue, and Restore empties it.
type EventTypeID string

type event struct {
	typeID EventTypeID
	source any
	data   int64
	delay  uint64 // cycles after the previous node in the list (or after now, for head)
	cb     Callback
	next   *event
}

type registeredType struct {
	cb Callback
}

// Scheduler owns the event queue, the authoritative cycle counter and
// the sprint-accounting fields that let cpu_cycles()/instruction_count()
// stay correct whether queried mid-sprint or between sprints.
type Scheduler struct {
	mode    Mode
	running bool

	cyclesCounter     uint64 // advanced only at sprint boundaries
	totalInstructions uint64

	sprintTotal    uint64
	sprintBurndown uint64

	head *event
	types map[EventTypeID]registeredType

	clockHz float64 // CPU clock frequency, Hz

	// Wall-clock smoothing state for ModeWallClockLive.
	hostMsPerVBL   float64
	hostMsPerIter  float64
	vblErrorAccum  float64

	log *slog.Logger

	// RunInstruction executes exactly one M68000 instruction against
	// the wired CPU and returns false only if the CPU has halted on a
	// double fault; a STOPped CPU keeps returning true. Installed by the
	// orchestration layer so this package never imports the CPU package
	// directly. When it is nil, RunSprint lets time pass as if every
	// instruction ran.
	RunInstruction func() bool
}

var errQueueOverflow = errors.New("scheduler: event queue exceeded sanity bound")

// New creates a scheduler at the given CPU clock frequency (Hz),
// defaulting to unbounded mode.
func New(clockHz float64, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		mode:    ModeUnbounded,
		clockHz: clockHz,
		types:   make(map[EventTypeID]registeredType),
		log:     log,
	}
}

// CPI returns the scheduler's current cycles-per-instruction constant,
// which is a function of mode alone.
func (s *Scheduler) CPI() uint64 {
	if s.mode == ModeHardwareAccurate {
		return cpiHardwareAccurate
	}
	return cpiUnbounded
}

// SetMode changes the timing mode. CPI changes immediately; past
// cycles already folded into cyclesCounter are not rewritten, so the
// instruction/cycle relationship is piecewise linear across a mode
// switch - this is by design.
func (s *Scheduler) SetMode(m Mode) {
	s.mode = m
}

func (s *Scheduler) Mode() Mode { return s.mode }

// RegisterEventType binds a stable name to a callback so checkpoint
// restore can recreate pending events without serializing a raw
// function pointer.
func (s *Scheduler) RegisterEventType(id EventTypeID, cb Callback) {
	s.types[id] = registeredType{cb: cb}
}

func (s *Scheduler) lookupType(id EventTypeID) Callback {
	if t, ok := s.types[id]; ok {
		return t.cb
	}
	return nil
}

// reconcileSprint folds in-progress sprint consumption into
// sprintTotal without touching cyclesCounter, so CPUCycles() is
// consistent whether it's called mid-sprint (via a callback invoked
// from inside RunInstruction, through ScheduleCPUEvent) or between
// sprints.
func (s *Scheduler) reconcileSprint() {
	s.sprintTotal -= s.sprintBurndown
	s.sprintBurndown = 0
}

// CPUCycles returns the authoritative emulated cycle count, including
// whatever part of the in-progress sprint has not yet been folded in.
func (s *Scheduler) CPUCycles() uint64 {
	return s.cyclesCounter + (s.sprintTotal-s.sprintBurndown)*s.CPI()
}

// InstructionCount returns the total instructions retired, including
// the in-progress sprint.
func (s *Scheduler) InstructionCount() uint64 {
	return s.totalInstructions + s.sprintTotal - s.sprintBurndown
}

// ScheduleCPUEvent inserts an event deltaCycles cycles from now,
// registered under typeID (see RegisterEventType). Before insertion
// the in-progress sprint is reconciled so "now" reflects whatever
// part of the sprint has already executed - this lets a memory write
// mid-instruction schedule an event relative to the instant of the
// write, not the start of the sprint.
func (s *Scheduler) ScheduleCPUEvent(typeID EventTypeID, source any, data int64, deltaCycles uint64) error {
	s.reconcileSprint()
	cb := s.lookupType(typeID)
	if cb == nil {
		return errors.New("scheduler: unregistered event type " + string(typeID))
	}
	return s.insert(&event{typeID: typeID, source: source, data: data, delay: deltaCycles, cb: cb})
}

func (s *Scheduler) insert(ev *event) error {
	if s.queueLength() >= maxQueueLen {
		s.log.Error("event queue sanity bound exceeded")
		return errQueueOverflow
	}
	if ev.delay == 0 {
		ev.cb(ev.data)
		return nil
	}
	if s.head == nil {
		s.head = ev
		return nil
	}
	var prev *event
	cur := s.head
	remaining := ev.delay
	for cur != nil {
		if remaining <= cur.delay {
			cur.delay -= remaining
			ev.delay = remaining
			ev.next = cur
			if prev == nil {
				s.head = ev
			} else {
				prev.next = ev
			}
			return nil
		}
		remaining -= cur.delay
		prev = cur
		cur = cur.next
	}
	ev.delay = remaining
	prev.next = ev
	return nil
}

func (s *Scheduler) queueLength() int {
	n := 0
	for e := s.head; e != nil; e = e.next {
		n++
	}
	return n
}

// CancelEvents removes every pending event whose source matches src.
// Used during device teardown so a soon-to-be-destroyed source never
// fires into freed state.
func (s *Scheduler) CancelEvents(src any) {
	var prev *event
	cur := s.head
	for cur != nil {
		if cur.source == src {
			nxt := cur.next
			if nxt != nil {
				nxt.delay += cur.delay
			}
			if prev == nil {
				s.head = nxt
			} else {
				prev.next = nxt
			}
			cur = nxt
			continue
		}
		prev = cur
		cur = cur.next
	}
}

// AnyEvent reports whether an event is pending.
func (s *Scheduler) AnyEvent() bool { return s.head != nil }

// headDelta returns the head event's remaining delay in cycles,
// relative to the current authoritative counter, or false if the
// queue is empty.
func (s *Scheduler) headDelta() (uint64, bool) {
	if s.head == nil {
		return 0, false
	}
	return s.head.delay, true
}

// RunSprint computes an instruction budget bounded by the next event
// (or the iteration's remaining cycle budget, whichever is smaller),
// runs the CPU that many instructions (floor 1, for atomicity), folds
// the result into the authoritative counters, and drains every event
// whose nominal time has now arrived. It returns the number of
// instructions executed.
func (s *Scheduler) RunSprint(remainingIterationCycles uint64) uint64 {
	cpi := s.CPI()
	budget := remainingIterationCycles
	if headDelta, ok := s.headDelta(); ok && headDelta < budget {
		budget = headDelta
	}
	instructions := budget / cpi
	if budget > 0 && instructions == 0 {
		instructions = 1 // instruction atomicity: never stall with work outstanding
	}
	if instructions == 0 {
		s.drainDue()
		return 0
	}

	s.sprintTotal = instructions
	s.sprintBurndown = instructions

	ran := uint64(0)
	for s.sprintBurndown > 0 {
		if s.RunInstruction != nil && !s.RunInstruction() {
			break
		}
		s.sprintBurndown--
		ran++
	}
	// Whatever remains undone (CPU stopped early) is not charged.
	executed := s.sprintTotal - s.sprintBurndown
	s.cyclesCounter += executed * cpi
	s.totalInstructions += executed
	s.sprintTotal = 0
	s.sprintBurndown = 0

	s.advanceEventClock(executed * cpi)
	s.drainDue()
	return ran
}

// advanceEventClock subtracts elapsed cycles from the head event's
// remaining delay, saturating at zero. Because the sprint budget was
// bounded by the head's delta, cycles should exactly exhaust it
// modulo the instruction-atomicity overshoot of up to CPI-1 cycles;
// saturating rather than going negative keeps that overshoot from
// ever giving a later event extra credit.
func (s *Scheduler) advanceEventClock(cycles uint64) {
	if s.head == nil {
		return
	}
	if cycles >= s.head.delay {
		s.head.delay = 0
	} else {
		s.head.delay -= cycles
	}
}

// drainDue fires every event whose relative delay has reached (or
// passed) zero. Because instructions are atomic, an event's nominal
// firing cycle may lag cyclesCounter by up to CPI-1 cycles; this is
// an accepted relaxation, not a bug (see advanceEventClock on sprint
// overshoot).
func (s *Scheduler) drainDue() {
	for s.head != nil && s.head.delay == 0 {
		ev := s.head
		s.head = ev.next
		ev.cb(ev.data)
	}
}

// Start/Stop are driven by the host loop; Stop breaks the *next*
// sprint boundary cleanly, matching the single-threaded cooperative
// model: there is no internal goroutine to signal, just a flag
// checked between sprints.
func (s *Scheduler) Start() { s.running = true }
func (s *Scheduler) Stop()  { s.running = false }
func (s *Scheduler) Running() bool { return s.running }
