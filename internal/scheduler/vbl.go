/*
   gsmac scheduler: VBL cadence and host main-loop driving.

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

package scheduler

const (
	vblEventType EventTypeID = "vbl"

	// VBLHz is the Macintosh Plus's vertical blanking rate.
	VBLHz = 60.147
)

// CyclesPerVBL returns the nominal emulated-cycle spacing between
// VBL pulses at the scheduler's configured clock frequency.
func (s *Scheduler) CyclesPerVBL() uint64 {
	return uint64(s.clockHz / VBLHz)
}

// OnVBL installs the callback invoked once per VBL. The scheduler itself only owns the
// cadence; the orchestration layer supplies what happens on the tick.
func (s *Scheduler) OnVBL(cb func()) {
	s.RegisterEventType(vblEventType, func(int64) {
		cb()
		s.scheduleNextVBL()
	})
	s.scheduleNextVBL()
}

func (s *Scheduler) scheduleNextVBL() {
	delta := s.CyclesPerVBL()
	if s.mode == ModeWallClockLive {
		delta = s.adjustedVBLDelta(delta)
	}
	_ = s.ScheduleCPUEvent(vblEventType, s, 0, delta)
}

// adjustedVBLDelta applies a proportional-integral correction driven
// by the accumulated wall-clock error, so that over many VBLs the
// emulated rate converges on real elapsed host time rather than
// drifting because of float rounding or host scheduling jitter.
func (s *Scheduler) adjustedVBLDelta(nominal uint64) uint64 {
	const kp = 0.02
	correction := 1.0 - kp*s.vblErrorAccum
	if correction < 0.5 {
		correction = 0.5
	}
	if correction > 1.5 {
		correction = 1.5
	}
	return uint64(float64(nominal) * correction)
}

// RunOneIteration is called by the host loop with the elapsed host
// time for this iteration. In unbounded mode it ignores hostTimeMs and
// runs a large fixed instruction budget; in hardware-accurate mode it
// runs exactly one emulated clock tick's worth of cycles; in
// wall-clock-live mode it skips CPU execution (but still drains due
// events) whenever emulated time is already ahead of host time, and
// otherwise updates the smoothed host-ms-per-iteration average used
// by the VBL correction above.
func (s *Scheduler) RunOneIteration(hostTimeMs float64) {
	if !s.running {
		s.drainDue()
		return
	}

	const unboundedBudget = 200_000 // cycles per host loop call, unbounded mode

	switch s.mode {
	case ModeUnbounded:
		s.RunSprint(unboundedBudget)

	case ModeHardwareAccurate:
		cycles := uint64(hostTimeMs * s.clockHz / 1000.0)
		if cycles == 0 {
			cycles = 1
		}
		s.RunSprint(cycles)

	case ModeWallClockLive:
		s.updateWallClockSmoothing(hostTimeMs)
		emulatedMsAhead := float64(s.CPUCycles()) / s.clockHz * 1000.0
		if emulatedMsAhead > hostTimeMs*2 {
			// Running ahead of the host: drain events only, let
			// host time catch up.
			s.drainDue()
			return
		}
		budget := uint64(hostTimeMs * s.clockHz / 1000.0)
		if budget == 0 {
			budget = 1
		}
		s.RunSprint(budget)
	}
}

func (s *Scheduler) updateWallClockSmoothing(hostTimeMs float64) {
	const alpha = 0.1
	if s.hostMsPerIter == 0 {
		s.hostMsPerIter = hostTimeMs
	} else {
		s.hostMsPerIter = s.hostMsPerIter*(1-alpha) + hostTimeMs*alpha
	}
}

// NoteVBLHostInterval feeds an observed host-ms-per-VBL sample into
// the smoothing average and updates the accumulated error used by
// adjustedVBLDelta. Nothing in this module calls it (the machine's
// VBL callback does not), so the correction stays at 1.0 unless a
// host supplies samples.
func (s *Scheduler) NoteVBLHostInterval(observedMs float64) {
	const alpha = 0.1
	const nominalMs = 1000.0 / VBLHz
	if s.hostMsPerVBL == 0 {
		s.hostMsPerVBL = observedMs
	} else {
		s.hostMsPerVBL = s.hostMsPerVBL*(1-alpha) + observedMs*alpha
	}
	s.vblErrorAccum += (s.hostMsPerVBL - nominalMs) / nominalMs
}
