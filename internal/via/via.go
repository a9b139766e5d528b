/*
   gsmac via: 6522 Versatile Interface Adapter.

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

// Package via models the 6522 VIA: two 8-bit ports, two timers, the
// shift register, and the seven interrupt sources the Plus aggregates
// into CPU IPL1. Register layout and timer/shift-register timing
// follow the 6522 datasheet as summarized for the Mac Plus wiring;
// the event-driven timer implementation is grounded on the same
// relative-delay scheduler used by every other subsystem rather than
// a per-cycle countdown, matching this tree's cooperative scheduling
// model.
package via

import (
	"log/slog"

	"github.com/tclark/gsmac/internal/device"
	"github.com/tclark/gsmac/internal/scheduler"
)

// Register indices, stride 0x200 on the Mac Plus bus.
const (
	regORB = iota
	regORA
	regDDRB
	regDDRA
	regT1CL
	regT1CH
	regT1LL
	regT1LH
	regT2CL
	regT2CH
	regSR
	regACR
	regPCR
	regIFR
	regIER
	regORANoHS
)

// IFR/IER bit positions (the seven interrupt sources plus bit 7, the
// IRQ-aggregate/enable-select flag).
const (
	ifCA2 = 1 << iota
	ifCA1
	ifSR
	ifCB2
	ifCB1
	ifT2
	ifT1
	ifIRQ // bit 7: read-only aggregate on IFR, set/clear select on IER
)

const (
	evT1 scheduler.EventTypeID = "via.t1"
	evT2 scheduler.EventTypeID = "via.t2"
	evSR scheduler.EventTypeID = "via.sr"

	// shiftTicks is how many VIA ticks elapse, in the output-under-T2
	// mode, between a write to SR and the byte latching and IFR.SR
	// firing - an observable timing keyboard software depends on.
	shiftTicks = 8
)

// PortAccess lets the orchestration layer observe and drive port bits
// that have machine-level meaning (overlay switch, RAM bank, sound
// buffer select, RTC bit-bang lines) without VIA importing any other
// subsystem.
type PortAccess struct {
	// OnPortBWrite is invoked after every ORB write (not after DDRB
	// writes) with the raw ORB value and the current DDRB, used for
	// the RTC serial lines (bits 0-2).
	OnPortBWrite func(orb, ddrb uint8)

	// OnPortAWrite is invoked after every ORA write, used for the ROM
	// overlay switch (bit 4) and the sound/screen buffer select (bit 3).
	OnPortAWrite func(ora uint8)
}

// VIA is one 6522. CyclesPerTick is the VIA's tick period in emulated
// CPU cycles (bus clock divided by the VIA's internal prescaler,
// roughly 10 on a Plus at 7.8336 MHz).
type VIA struct {
	ORA, ORB, DDRA, DDRB uint8
	T1C, T1L             uint16
	T2C, T2L             uint16
	SR                   uint8
	ACR, PCR             uint8
	IFR, IER             uint8

	ca1Prev, cb1Prev bool
	pb7              bool // free-run T1 output level

	CyclesPerTick uint64

	sched *scheduler.Scheduler
	sink  device.InterruptSink
	level int // interrupt level this VIA asserts (IPL1 on the Plus)

	Ports PortAccess

	log *slog.Logger
}

// New creates a VIA wired to sched for timer/shift-register events and
// sink for interrupt aggregation (raised/lowered at level, 1 for the
// Plus's VIA->IPL1 wiring).
func New(sched *scheduler.Scheduler, sink device.InterruptSink, level int, cyclesPerTick uint64, log *slog.Logger) *VIA {
	if log == nil {
		log = slog.Default()
	}
	v := &VIA{sched: sched, sink: sink, level: level, CyclesPerTick: cyclesPerTick, log: log}
	sched.RegisterEventType(evT1, v.onT1)
	sched.RegisterEventType(evT2, v.onT2)
	sched.RegisterEventType(evSR, v.onSR)
	return v
}

// ReadByte implements the memory-mapped register read side, matching
// device.ByteDevice's func-field shape: callers wrap this method
// directly as the device's Read field rather than VIA implementing
// device.MappedDevice itself.
func (v *VIA) ReadByte(offset uint32) uint8 {
	reg := int(offset/0x200) & 0xF
	switch reg {
	case regORB:
		v.clearIFR(ifCB1 | ifCB2Maybe(v.PCR))
		return (v.ORB & v.DDRB) | (v.externalORB() &^ v.DDRB)
	case regORA, regORANoHS:
		if reg == regORA {
			v.clearIFR(ifCA1 | ifCA2Maybe(v.PCR))
		}
		return (v.ORA & v.DDRA) | (externalORA() &^ v.DDRA)
	case regDDRB:
		return v.DDRB
	case regDDRA:
		return v.DDRA
	case regT1CL:
		v.clearIFR(ifT1)
		return uint8(v.T1C)
	case regT1CH:
		return uint8(v.T1C >> 8)
	case regT1LL:
		return uint8(v.T1L)
	case regT1LH:
		return uint8(v.T1L >> 8)
	case regT2CL:
		v.clearIFR(ifT2)
		return uint8(v.T2C)
	case regT2CH:
		return uint8(v.T2C >> 8)
	case regSR:
		v.clearIFR(ifSR)
		return v.SR
	case regACR:
		return v.ACR
	case regPCR:
		return v.PCR
	case regIFR:
		r := v.IFR &^ ifIRQ
		if v.IFR&v.IER&0x7F != 0 {
			r |= ifIRQ
		}
		return r
	case regIER:
		return v.IER | ifIRQ
	}
	return 0
}

// WriteByte implements the memory-mapped register write side.
func (v *VIA) WriteByte(offset uint32, value uint8) {
	reg := int(offset/0x200) & 0xF
	switch reg {
	case regORB:
		v.ORB = value
		v.clearIFR(ifCB1 | ifCB2Maybe(v.PCR))
		if v.Ports.OnPortBWrite != nil {
			v.Ports.OnPortBWrite(v.ORB, v.DDRB)
		}
	case regORA, regORANoHS:
		v.ORA = value
		if v.Ports.OnPortAWrite != nil {
			v.Ports.OnPortAWrite(v.ORA)
		}
		if reg == regORA {
			v.clearIFR(ifCA1 | ifCA2Maybe(v.PCR))
		}
	case regDDRB:
		v.DDRB = value
	case regDDRA:
		v.DDRA = value
	case regT1LL:
		v.T1L = (v.T1L & 0xFF00) | uint16(value)
	case regT1CL, regT1LH:
		v.T1L = (v.T1L & 0x00FF) | uint16(value)<<8
	case regT1CH:
		v.T1L = (v.T1L & 0x00FF) | uint16(value)<<8
		v.T1C = v.T1L
		v.clearIFR(ifT1)
		v.pb7 = false
		v.startT1()
	case regT2CL:
		v.T2L = (v.T2L & 0xFF00) | uint16(value)
	case regT2CH:
		v.T2C = (uint16(value) << 8) | (v.T2L & 0x00FF)
		v.T2L = (v.T2L & 0x00FF) | uint16(value)<<8
		v.clearIFR(ifT2)
		v.startT2()
	case regSR:
		v.SR = value
		v.scheduleShift()
	case regACR:
		v.ACR = value
	case regPCR:
		v.PCR = value
	case regIFR:
		v.IFR &^= value & 0x7F
		v.evaluateIRQ()
	case regIER:
		if value&0x80 != 0 {
			v.IER |= value & 0x7F
		} else {
			v.IER &^= value & 0x7F
		}
		v.evaluateIRQ()
	}
}

func (v *VIA) clearIFR(bits uint8) {
	v.IFR &^= bits
	v.evaluateIRQ()
}

func (v *VIA) setIFR(bits uint8) {
	v.IFR |= bits
	v.evaluateIRQ()
}

// evaluateIRQ is the aggregator: called after every IFR/IER change, it
// raises or lowers the single CPU interrupt line this VIA owns based
// on (IFR & IER & 0x7F) != 0.
func (v *VIA) evaluateIRQ() {
	if v.sink == nil {
		return
	}
	if v.IFR&v.IER&0x7F != 0 {
		v.sink.RaiseInterrupt(v.level)
	} else {
		v.sink.LowerInterrupt(v.level)
	}
}

func (v *VIA) startT1() {
	v.sched.CancelEvents(v)
	v.sched.ScheduleCPUEvent(evT1, v, 0, (uint64(v.T1C)+1)*v.CyclesPerTick)
}

func (v *VIA) onT1(int64) {
	v.setIFR(ifT1)
	if v.ACR&0x80 != 0 { // free-run
		v.pb7 = !v.pb7
		v.T1C = v.T1L
		v.sched.ScheduleCPUEvent(evT1, v, 0, (uint64(v.T1L)+1)*v.CyclesPerTick)
	} else {
		v.pb7 = false
		// One-shot: counter keeps decrementing conceptually but no
		// further interrupts occur until the counter is rewritten.
	}
}

func (v *VIA) startT2() {
	v.sched.ScheduleCPUEvent(evT2, v, 1, (uint64(v.T2C)+1)*v.CyclesPerTick)
}

func (v *VIA) onT2(int64) {
	v.setIFR(ifT2)
	// T2 is always one-shot on the 6522; it is not rearmed here.
}

// scheduleShift arms the 8-VIA-tick delay between an SR write and the
// byte latching under output-under-T2 mode. This delay is load-bearing
// for keyboard software and must not be collapsed to an immediate
// IFR.SR set.
func (v *VIA) scheduleShift() {
	mode := (v.ACR >> 2) & 0x7
	if mode == 0 {
		return // shift register disabled
	}
	v.sched.ScheduleCPUEvent(evSR, v, 0, shiftTicks*v.CyclesPerTick)
}

func (v *VIA) onSR(int64) {
	v.setIFR(ifSR)
}

// PB7 reports the current free-run/one-shot T1 output level, for a
// host that wires PB7 to a visible line (unused on the stock Plus
// wiring but kept for fidelity and testability).
func (v *VIA) PB7() bool { return v.pb7 }

func ifCA2Maybe(pcr uint8) uint8 {
	if pcr&0x08 == 0 { // CA2 is an input line in this PCR configuration
		return ifCA2
	}
	return 0
}

func ifCB2Maybe(pcr uint8) uint8 {
	if pcr&0x80 == 0 {
		return ifCB2
	}
	return 0
}

// externalORA/externalORB model the input side of pins configured as
// inputs by DDR; the stock 68000 Plus wiring ties most of these to
// fixed levels or other devices via PortAccess, so the baseline here
// reads back ones (open/pulled-up), the common reset default.
func externalORA() uint8 { return 0xFF }

func (v *VIA) externalORB() uint8 { return 0xFF }

// RaiseCA1/RaiseCB1 pulse the edge-sensitive CA1/CB1 inputs - the VBL
// line is wired to CA1/CB1 on a Plus and calls these once per VBL.
func (v *VIA) RaiseCA1() { v.setIFR(ifCA1) }
func (v *VIA) RaiseCB1() { v.setIFR(ifCB1) }

// RaiseCA2 pulses CA2 (the RTC wiring uses this line too).
func (v *VIA) RaiseCA2() { v.setIFR(ifCA2) }
