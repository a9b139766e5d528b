/*
   gsmac scsi: NCR 5380 bus phase state machine and disk targets.

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

// Package scsi models an NCR 5380 SCSI controller and its attached
// disk targets: bus phase state machine, CDB dispatch, per-LUN sense,
// and the register layout the Macintosh Plus maps at 0x580000. The
// register is chosen by offset modulo 8 alone: reads and writes decode
// the same way at even and odd addresses.
package scsi

import "log/slog"

// Phase is the bus state, mirroring the classic 5380 phase encoding
// (MSG, C/D, I/O active-low bit meanings folded into named states).
type Phase int

const (
	PhaseBusFree Phase = iota
	PhaseArbitration
	PhaseSelection
	PhaseReselection
	PhaseCommand
	PhaseDataIn
	PhaseDataOut
	PhaseStatus
	PhaseMessageIn
	PhaseMessageOut
)

// Register offsets, mirrored every 8 bytes on the Plus's decode.
const (
	regCurrentData    = 0 // read: current SCSI data bus; write: output data register
	regInitiatorCmd   = 1
	regMode           = 2
	regTargetCmd      = 3
	regCurrentStatus  = 4 // read-only; write aliases select-enable
	regSelectEnable   = 4
	regBusAndStatus   = 5 // read-only; write aliases start-DMA-send
	regInputData      = 6 // read-only; write aliases start-DMA-target-recv
	regResetParityIRQ = 7 // read clears latches; write starts DMA init recv
)

// Initiator command register bits.
const (
	icrAssertDataBus = 1 << 0
	icrATN           = 1 << 1
	icrSEL           = 1 << 2
	icrBSY           = 1 << 3
	icrACK           = 1 << 4
	icrLA            = 1 << 5 // lost arbitration
	icrAIP           = 1 << 6 // arbitration in progress
	icrRST           = 1 << 7
)

// Bus and status register bits (read-only).
const (
	basREQ       = 1 << 5
	basPhaseMatch = 1 << 3
	basIRQ       = 1 << 4
	basEndOfDMA  = 1 << 7
)

// Controller owns one initiator-facing register file plus up to seven
// attached targets (SCSI IDs 0-6). The Macintosh Plus itself occupies
// initiator ID 7, matching the stock ROM's convention.
type Controller struct {
	log *slog.Logger

	icr  uint8
	mode uint8
	tcr  uint8
	dataLatch uint8
	selectEnable uint8

	phase      Phase
	selectedID int
	targets    [8]*Target

	cdb     []byte
	cdbWant int

	xferBuf []byte
	xferPos int
	pendingWrite commandResult
	lastStatus   uint8

	sink InterruptSink
}

// InterruptSink receives SCSI IRQ level changes; on the Plus this is
// wired to VIA CA1/CA2 rather than directly to the CPU, so a minimal
// level-driven callback is enough.
type InterruptSink interface {
	SetSCSIIRQ(asserted bool)
}

// New creates an idle controller with no targets attached.
func New(sink InterruptSink, log *slog.Logger) *Controller {
	return &Controller{phase: PhaseBusFree, selectedID: -1, sink: sink, log: log}
}

// Attach installs a target at the given SCSI ID (0-6; ID 7 is the
// initiator and cannot host a target).
func (c *Controller) Attach(id int, t *Target) {
	if id < 0 || id > 6 {
		return
	}
	c.targets[id] = t
}

// ReadByte dispatches a register read at the mirrored offset.
func (c *Controller) ReadByte(offset uint32) uint8 {
	switch offset % 8 {
	case regCurrentData:
		return c.readData()
	case regInitiatorCmd:
		return c.icr
	case regMode:
		return c.mode
	case regTargetCmd:
		return c.tcr
	case regCurrentStatus:
		return c.currentStatus()
	case regBusAndStatus:
		return c.busAndStatus()
	case regInputData:
		return c.readData()
	case regResetParityIRQ:
		v := c.irqLatch()
		c.clearIRQLatch()
		return v
	}
	return 0xFF
}

// WriteByte dispatches a register write at the mirrored offset.
func (c *Controller) WriteByte(offset uint32, v uint8) {
	switch offset % 8 {
	case regCurrentData:
		c.dataLatch = v
		c.onDataWrite(v)
	case regInitiatorCmd:
		c.writeICR(v)
	case regMode:
		c.mode = v
	case regTargetCmd:
		c.tcr = v
	case regSelectEnable:
		c.selectEnable = v
	case regBusAndStatus:
		// start-DMA-send: handled synchronously via pseudo-DMA reads/writes.
	case regInputData:
		// start-DMA-target-receive: same pseudo-DMA model.
	case regResetParityIRQ:
		// start-DMA-initiator-receive.
	}
}

func (c *Controller) currentStatus() uint8 {
	var s uint8
	if c.icr&icrBSY != 0 || c.selectedID >= 0 {
		s |= 1 << 6 // BSY
	}
	if c.icr&icrRST != 0 {
		s |= 1 << 7 // RST
	}
	s |= c.phaseBits()
	if c.phase != PhaseBusFree {
		s |= basREQ
	}
	return s
}

func (c *Controller) phaseBits() uint8 {
	var msg, cd, io uint8
	switch c.phase {
	case PhaseCommand:
		cd = 1
	case PhaseDataIn:
		io = 1
	case PhaseDataOut:
	case PhaseStatus:
		cd, io = 1, 1
	case PhaseMessageIn:
		msg, cd, io = 1, 1, 1
	case PhaseMessageOut:
		msg, cd = 1, 1
	}
	return msg<<2 | cd<<1 | io
}

func (c *Controller) busAndStatus() uint8 {
	var b uint8
	if c.phaseBits() == c.tcr&0x07 {
		b |= basPhaseMatch
	}
	if c.phase != PhaseBusFree {
		b |= basREQ
	}
	return b
}

func (c *Controller) irqLatch() uint8 {
	return 0
}

func (c *Controller) clearIRQLatch() {
	c.raiseIRQ(false)
}

func (c *Controller) raiseIRQ(asserted bool) {
	if c.sink != nil {
		c.sink.SetSCSIIRQ(asserted)
	}
}

// writeICR handles initiator command register writes, including
// arbitration and selection transitions.
func (c *Controller) writeICR(v uint8) {
	prevSEL := c.icr&icrSEL != 0
	c.icr = v

	if v&icrRST != 0 {
		c.reset()
		return
	}

	switch c.phase {
	case PhaseBusFree:
		if v&icrBSY != 0 && v&icrAIP == 0 {
			c.phase = PhaseArbitration
		}
	case PhaseArbitration:
		if !prevSEL && v&icrSEL != 0 {
			c.beginSelection()
		}
	}
}

// initiatorID is the Macintosh Plus's own SCSI ID, fixed at 7. The
// selection data bus carries both the initiator's own bit and the
// target's bit OR'd together, so the target bit is whatever remains
// once the initiator's bit is masked off.
const initiatorID = 7

func (c *Controller) beginSelection() {
	id := highestBit(c.dataLatch &^ (1 << initiatorID))
	if id < 0 {
		c.phase = PhaseBusFree
		return
	}
	c.selectedID = id
	t := c.targets[id]
	if t == nil {
		c.phase = PhaseBusFree
		c.selectedID = -1
		return
	}
	c.phase = PhaseCommand
	c.cdb = nil
	c.cdbWant = 0
	t.OnSelected()
}

func highestBit(mask uint8) int {
	for i := 7; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

func (c *Controller) reset() {
	c.phase = PhaseBusFree
	c.selectedID = -1
	c.icr = 0
	c.cdb = nil
	c.xferBuf = nil
	for _, t := range c.targets {
		if t != nil {
			t.OnBusReset()
		}
	}
}

// onDataWrite feeds a byte written on the data bus into the current
// phase's consumer: CDB bytes in command phase, payload bytes in
// data-out.
func (c *Controller) onDataWrite(v uint8) {
	switch c.phase {
	case PhaseCommand:
		c.feedCDB(v)
	case PhaseDataOut:
		c.feedDataOut(v)
	case PhaseMessageOut:
		// Identify/message bytes are accepted but not acted on beyond
		// completing the handshake; the stock ROM only ever sends
		// IDENTIFY, which carries no LUN addressing this core models.
	}
}

func (c *Controller) feedCDB(v uint8) {
	c.cdb = append(c.cdb, v)
	if c.cdbWant == 0 {
		c.cdbWant = cdbLength(v)
	}
	if len(c.cdb) >= c.cdbWant {
		c.dispatchCDB()
	}
}

func cdbLength(opcode uint8) int {
	switch {
	case opcode < 0x20:
		return 6
	case opcode < 0x60:
		return 10
	default:
		return 12
	}
}

func (c *Controller) target() *Target {
	if c.selectedID < 0 {
		return nil
	}
	return c.targets[c.selectedID]
}

func (c *Controller) dispatchCDB() {
	t := c.target()
	if t == nil {
		c.phase = PhaseBusFree
		return
	}
	result := t.Execute(c.cdb)
	c.cdb = nil
	c.cdbWant = 0

	switch result.Phase {
	case resultDataIn:
		c.xferBuf = result.Data
		c.xferPos = 0
		c.phase = PhaseDataIn
	case resultDataOut:
		c.xferBuf = make([]byte, result.Want)
		c.xferPos = 0
		c.phase = PhaseDataOut
		c.pendingWrite = result
	case resultComplete:
		c.finishStatus(result.Status)
	}
}

func (c *Controller) readData() uint8 {
	switch c.phase {
	case PhaseDataIn:
		if c.xferPos < len(c.xferBuf) {
			v := c.xferBuf[c.xferPos]
			c.xferPos++
			if c.xferPos >= len(c.xferBuf) {
				c.finishStatus(statusGood)
			}
			return v
		}
	case PhaseStatus:
		c.phase = PhaseMessageIn
		return c.lastStatus
	case PhaseMessageIn:
		c.phase = PhaseBusFree
		c.selectedID = -1
		return 0 // COMMAND COMPLETE
	}
	return 0
}

func (c *Controller) feedDataOut(v uint8) {
	if c.xferPos < len(c.xferBuf) {
		c.xferBuf[c.xferPos] = v
		c.xferPos++
		if c.xferPos >= len(c.xferBuf) {
			t := c.target()
			status := statusGood
			if t != nil {
				status = t.CompleteWrite(c.pendingWrite, c.xferBuf)
			}
			c.finishStatus(status)
		}
	}
}

func (c *Controller) finishStatus(status uint8) {
	c.lastStatus = status
	c.phase = PhaseStatus
}
