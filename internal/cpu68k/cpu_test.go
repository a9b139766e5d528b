/*
   gsmac cpu68k: interpreter tests.

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

package cpu68k

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatMemory is a minimal big-endian Memory backing store for tests;
// the real machine wires memmap.Map instead.
type flatMemory struct {
	buf [1 << 20]byte
}

func (m *flatMemory) Read8(addr uint32) uint8  { return m.buf[addr] }
func (m *flatMemory) Write8(addr uint32, v uint8) { m.buf[addr] = v }
func (m *flatMemory) Read16(addr uint32) uint16 {
	return uint16(m.buf[addr])<<8 | uint16(m.buf[addr+1])
}
func (m *flatMemory) Write16(addr uint32, v uint16) {
	m.buf[addr] = byte(v >> 8)
	m.buf[addr+1] = byte(v)
}
func (m *flatMemory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr))<<16 | uint32(m.Read16(addr+2))
}
func (m *flatMemory) Write32(addr uint32, v uint32) {
	m.Write16(addr, uint16(v>>16))
	m.Write16(addr+2, uint16(v))
}

func newTestCPU() (*CPU, *flatMemory) {
	mem := &flatMemory{}
	mem.Write32(0, 0x00010000) // initial SSP
	mem.Write32(4, 0x00000400) // initial PC
	c := New(mem, nil)
	c.Reset()
	return c, mem
}

func TestMoveqSetsFlags(t *testing.T) {
	c, mem := newTestCPU()
	mem.Write16(c.PC, 0x7000) // MOVEQ #0,D0
	c.RunInstruction()
	assert.EqualValues(t, 0, c.D[0])
	assert.True(t, c.SR&srZ != 0)

	c.PC = 0x400
	mem.Write16(c.PC, 0x70FF) // MOVEQ #-1,D0
	c.RunInstruction()
	assert.EqualValues(t, 0xFFFFFFFF, c.D[0])
	assert.True(t, c.SR&srN != 0)
}

func TestAddLongDnDn(t *testing.T) {
	c, mem := newTestCPU()
	c.D[0] = 10
	c.D[1] = 20
	mem.Write16(c.PC, 0xD081) // ADD.L D1,D0
	c.RunInstruction()
	assert.EqualValues(t, 30, c.D[0])
	assert.False(t, c.SR&srZ != 0)
}

func TestSubWithOverflow(t *testing.T) {
	c, mem := newTestCPU()
	c.D[0] = 0x80000000
	c.D[1] = 1
	mem.Write16(c.PC, 0x9081) // SUB.L D1,D0
	c.RunInstruction()
	assert.EqualValues(t, 0x7FFFFFFF, c.D[0])
	assert.True(t, c.SR&srV != 0)
}

func TestMoveByteToMemory(t *testing.T) {
	c, mem := newTestCPU()
	c.D[0] = 0xAB
	c.A[0] = 0x1000
	mem.Write16(c.PC, 0x1080) // MOVE.B D0,(A0)
	c.RunInstruction()
	assert.EqualValues(t, 0xAB, mem.Read8(0x1000))
}

func TestLeaAbsoluteShort(t *testing.T) {
	c, mem := newTestCPU()
	c.A[7] = 0x2000
	mem.Write16(c.PC, 0x43F8) // LEA $2000.W,A1
	mem.Write16(c.PC+2, 0x2000)
	c.RunInstruction()
	assert.EqualValues(t, 0x2000, c.A[1])
}

func TestBraTakesBranch(t *testing.T) {
	c, mem := newTestCPU()
	start := c.PC
	mem.Write16(c.PC, 0x6004) // BRA +4
	c.RunInstruction()
	assert.EqualValues(t, start+2+4, c.PC)
}

func TestDbccLoopsUntilExpired(t *testing.T) {
	c, mem := newTestCPU()
	c.D[0] = 2
	loopPC := c.PC
	mem.Write16(c.PC, 0x51C8) // DBF D0,*
	mem.Write16(c.PC+2, 0xFFFE)
	c.RunInstruction()
	assert.EqualValues(t, 1, c.D[0]&0xFFFF)
	assert.EqualValues(t, loopPC, c.PC)
}

func TestAndiToCCR(t *testing.T) {
	c, mem := newTestCPU()
	c.SR |= srZ | srN
	mem.Write16(c.PC, 0x023C) // ANDI #imm,CCR
	mem.Write16(c.PC+2, 0x00FB)
	c.RunInstruction()
	assert.False(t, c.SR&srZ != 0)
	assert.True(t, c.SR&srN != 0)
}

func TestBsetStaticOnMemory(t *testing.T) {
	c, mem := newTestCPU()
	c.A[0] = 0x1000
	mem.Write8(0x1000, 0x00)
	mem.Write16(c.PC, 0x08D0) // BSET #3,(A0)
	mem.Write16(c.PC+2, 0x0003)
	c.RunInstruction()
	assert.EqualValues(t, 0x08, mem.Read8(0x1000))
}

func TestIllegalOpcodeTrapsAndBacksUpPC(t *testing.T) {
	c, mem := newTestCPU()
	mem.Write32(vecIllegalInstr*4, 0x00000800)
	mem.Write16(c.PC, 0x4AFC) // an illegal opcode
	c.RunInstruction()
	assert.EqualValues(t, 0x800, c.PC)
	assert.True(t, c.Supervisor())
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.D[3] = 0xDEADBEEF
	c.PC = 0x1234
	snap := c.Snapshot()

	c2, _ := newTestCPU()
	c2.Restore(snap)
	assert.EqualValues(t, 0xDEADBEEF, c2.D[3])
	assert.EqualValues(t, 0x1234, c2.PC)
}
