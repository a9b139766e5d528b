/*
   gsmac scc: Z8530 Serial Communications Controller.

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

// Package scc models the two independent channels of a Z8530, the
// SDLC receive-frame path that carries LocalTalk traffic into the
// guest, and the DCD-transition mechanism the Plus uses to deliver
// mouse quadrature interrupts. Register access (indirect pointer via
// WR0, 8/16 register extension) follows the Z8530 datasheet; the
// per-channel frame queue is grounded on this tree's device-handler
// and event-scheduling conventions rather than a vendor reference
// implementation.
package scc

import (
	"log/slog"

	"github.com/tclark/gsmac/internal/device"
	"github.com/tclark/gsmac/internal/scheduler"
)

// frameQueueDepth is the maximum number of complete SDLC frames
// buffered per channel before SDLCSend starts dropping and
// counting overflows.
const frameQueueDepth = 8

// RR0 bit positions (status register, channel-specific).
const (
	rr0RxAvail = 1 << iota
	rr0ZeroCount
	rr0DCD
	rr0SYNCHunt
	rr0CTS
	rr0TxUnderrun
	rr0Break
	rr0TxBufEmpty
)

type channelID int

const (
	ChannelA channelID = iota
	ChannelB
)

type channel struct {
	id channelID

	wr [16]uint8
	rr [16]uint8

	selectedReg uint8 // register selected by the last WR0 pointer write

	rxEnabled bool
	hunting   bool

	frames      [][]byte
	overflow    int
	staging     []byte
	stagingPos  int

	dcd     bool
	extIntEnabled bool

	scc *SCC
}

// SCC owns both channels and the interrupt sink they aggregate into.
type SCC struct {
	A, B *channel

	sched *scheduler.Scheduler
	sink  device.InterruptSink
	level int

	log *slog.Logger
}

var (
	evDrainA scheduler.EventTypeID = "scc.drainA"
	evDrainB scheduler.EventTypeID = "scc.drainB"
)

// New creates an SCC wired to sched and an interrupt sink asserted at
// level (IPL2 on the Plus).
func New(sched *scheduler.Scheduler, sink device.InterruptSink, level int, log *slog.Logger) *SCC {
	if log == nil {
		log = slog.Default()
	}
	s := &SCC{sched: sched, sink: sink, level: level, log: log}
	s.A = &channel{id: ChannelA, scc: s}
	s.B = &channel{id: ChannelB, scc: s}
	sched.RegisterEventType(evDrainA, func(int64) { s.A.deliverByte() })
	sched.RegisterEventType(evDrainB, func(int64) { s.B.deliverByte() })
	return s
}

func (s *SCC) chanByOffset(offset uint32) (*channel, bool, bool) {
	// Mac Plus wiring: offsets 0/1 = channel B control/data,
	// offsets 2/3 = channel A control/data (interleaved, even=control).
	switch offset & 0x3 {
	case 0:
		return s.B, true, false
	case 1:
		return s.B, false, false
	case 2:
		return s.A, true, false
	case 3:
		return s.A, false, false
	}
	return nil, false, false
}

// ReadByte implements the control/data register read side.
func (s *SCC) ReadByte(offset uint32) uint8 {
	ch, isControl, _ := s.chanByOffset(offset)
	if ch == nil {
		return 0
	}
	if isControl {
		return ch.readRR()
	}
	return ch.readData()
}

// WriteByte implements the control/data register write side.
func (s *SCC) WriteByte(offset uint32, value uint8) {
	ch, isControl, _ := s.chanByOffset(offset)
	if ch == nil {
		return
	}
	if isControl {
		ch.writeWR(value)
	} else {
		ch.writeData(value)
	}
}

// writeWR implements the two-write indirect-register protocol: the
// first write to the control port selects a register (low 3 bits,
// with command 001 in bits 3-5 extending the selection to 8-15); the
// next control write targets that register.
func (c *channel) writeWR(value uint8) {
	if c.selectedReg == 0 {
		reg := value & 0x7
		if (value>>3)&0x7 == 1 {
			reg += 8
		}
		c.selectedReg = reg + 1 // +1 so zero means "no pending selection"
		if reg == 0 {
			// A bare WR0 access with no register-select command bits
			// is itself the command: handle reset/enable bits inline.
			c.applyWR0Command(value)
			c.selectedReg = 0
		}
		return
	}
	reg := c.selectedReg - 1
	c.selectedReg = 0
	c.wr[reg] = value
	switch reg {
	case 3:
		c.rxEnabled = value&0x1 != 0
		c.hunting = true
	case 15:
		c.extIntEnabled = value&0x1 != 0
	}
	c.scc.evaluateIRQ()
	c.pumpReceive()
}

func (c *channel) applyWR0Command(value uint8) {
	cmd := (value >> 6) & 0x3
	switch cmd {
	case 1: // reset ext/status interrupts
		c.rr[0] &^= 0 // status bits themselves are re-derived, nothing latched here
	case 3: // channel reset
		*c = channel{id: c.id, scc: c.scc}
	}
}

func (c *channel) readRR() uint8 {
	reg := c.selectedReg
	if reg == 0 {
		return c.computeRR0()
	}
	c.selectedReg = 0
	idx := reg - 1
	if idx == 0 {
		return c.computeRR0()
	}
	return c.rr[idx]
}

func (c *channel) computeRR0() uint8 {
	v := uint8(0)
	if c.dcd {
		v |= rr0DCD
	}
	if len(c.staging) > c.stagingPos {
		v |= rr0RxAvail
	}
	v |= rr0TxBufEmpty // transmitter always ready: no host audio path models backpressure
	return v
}

func (c *channel) readData() uint8 {
	if c.stagingPos < len(c.staging) {
		b := c.staging[c.stagingPos]
		c.stagingPos++
		if c.stagingPos >= len(c.staging) {
			c.staging = nil
			c.stagingPos = 0
			c.pumpReceive()
		}
		return b
	}
	return 0
}

func (c *channel) writeData(value uint8) {
	// Transmit path is not modeled beyond acceptance; no LocalTalk
	// peer exists inside the core to receive it.
	_ = value
}

// SDLCSend enqueues a complete SDLC frame for delivery to the guest.
// If the channel's queue is already at depth, the frame is dropped
// and the overflow counter increments - per-channel, never shared,
// so back-to-back frames on A and B cannot clobber each other.
func (s *SCC) SDLCSend(ch channelID, frame []byte) {
	c := s.A
	if ch == ChannelB {
		c = s.B
	}
	if len(c.frames) >= frameQueueDepth {
		c.overflow++
		return
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	c.frames = append(c.frames, cp)
	c.pumpReceive()
}

// pumpReceive dequeues the next frame into the staging buffer and
// arms a paced "character available" delivery sequence, provided the
// receiver is enabled, hunting for a frame (not already draining
// one), and nothing is currently staged.
func (c *channel) pumpReceive() {
	if !c.rxEnabled || len(c.staging) > 0 || len(c.frames) == 0 {
		return
	}
	c.staging = c.frames[0]
	c.frames = c.frames[1:]
	c.stagingPos = 0
	c.hunting = false
	c.scheduleDeliver()
}

func (c *channel) scheduleDeliver() {
	ev := evDrainA
	if c.id == ChannelB {
		ev = evDrainB
	}
	// One byte every 160 CPU cycles (16 VIA ticks at the Plus's 10
	// cycles per tick) models the SDLC bit rate
	// closely enough for the guest's interrupt-driven drain loop;
	// exact baud timing is out of scope for this core.
	c.scc.sched.ScheduleCPUEvent(ev, c, 0, 160)
}

func (c *channel) deliverByte() {
	if len(c.staging) == 0 {
		return
	}
	c.scc.evaluateIRQ()
	if c.stagingPos < len(c.staging) {
		c.scheduleDeliver()
	}
}

// evaluateIRQ re-derives the aggregate SCC interrupt line: any
// enabled and pending condition on either channel asserts it.
func (s *SCC) evaluateIRQ() {
	pending := false
	for _, c := range []*channel{s.A, s.B} {
		if c.rxEnabled && len(c.staging) > c.stagingPos {
			pending = true
		}
		if c.extIntEnabled && c.dcd {
			pending = true
		}
	}
	if s.sink == nil {
		return
	}
	if pending {
		s.sink.RaiseInterrupt(s.level)
	} else {
		s.sink.LowerInterrupt(s.level)
	}
}

// MouseStep sets the DCD bit on the named channel to level (mouse
// X1/Y1 are wired to channel A/B DCD inputs on the Plus); it does not
// toggle the bit. It then re-evaluates the interrupt line, which is
// asserted while WR15 enables external/status interrupts and DCD is
// set.
func (s *SCC) MouseStep(ch channelID, level bool) {
	c := s.A
	if ch == ChannelB {
		c = s.B
	}
	c.dcd = level
	s.evaluateIRQ()
}
