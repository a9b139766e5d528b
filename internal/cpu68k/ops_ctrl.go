/*
   gsmac cpu68k: miscellaneous control instructions (line 4) and the
   immediate/bit-manipulation instructions dispatched from line 0.

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

// execLine4 covers NEGX/CLR/NEG/NOT/TST/NBCD, single-operand CHK/LEA/
// PEA/MOVEM/SWAP/EXT/TRAP/LINK/UNLK/RESET/NOP/STOP/RTE/RTS/TRAPV/RTR/
// JSR/JMP, MOVE-to/from-SR/CCR/USP — the 0100 line holds most of the
// instruction set's "single operand or no operand" forms.
func (c *CPU) execLine4(op uint16) {
	if op == 0x4AFC {
		// Reserved word the toolchain and ROMs use as a deliberate
		// illegal instruction; real hardware traps it rather than
		// treating it as TAS with an immediate destination.
		c.illegal()
		return
	}
	switch {
	case op == 0x4E71: // NOP
		return
	case op == 0x4E70: // RESET
		return
	case op == 0x4E72: // STOP
		imm := c.fetchWord()
		c.SR = imm
		c.stopped = true
		return
	case op == 0x4E73: // RTE
		if !c.Supervisor() {
			c.privilegeViolation()
			return
		}
		c.SR = c.mem.Read16(c.A[7])
		c.A[7] += 2
		c.PC = c.mem.Read32(c.A[7])
		c.A[7] += 4
		return
	case op == 0x4E75: // RTS
		c.PC = c.mem.Read32(c.A[7])
		c.A[7] += 4
		return
	case op == 0x4E76: // TRAPV
		if c.SR&srV != 0 {
			c.raiseException(vecTRAPV, 0, false)
		}
		return
	case op == 0x4E77: // RTR
		ccr := c.mem.Read16(c.A[7])
		c.A[7] += 2
		c.SR = (c.SR &^ 0x00FF) | (ccr & 0x00FF)
		c.PC = c.mem.Read32(c.A[7])
		c.A[7] += 4
		return
	case op&0xFFF8 == 0x4E50: // LINK
		reg := int(op & 7)
		disp := int16(c.fetchWord())
		c.A[7] -= 4
		c.mem.Write32(c.A[7], c.A[reg])
		c.A[reg] = c.A[7]
		c.A[7] = uint32(int32(c.A[7]) + int32(disp))
		return
	case op&0xFFF8 == 0x4E58: // UNLK
		reg := int(op & 7)
		c.A[7] = c.A[reg]
		c.A[reg] = c.mem.Read32(c.A[7])
		c.A[7] += 4
		return
	case op&0xFFF0 == 0x4E60: // MOVE An,USP / MOVE USP,An
		if !c.Supervisor() {
			c.privilegeViolation()
			return
		}
		reg := int(op & 7)
		if op&8 == 0 {
			c.USP = c.A[reg]
		} else {
			c.A[reg] = c.USP
		}
		return
	case op&0xFF00 == 0x4E00 && op&0xC0 == 0x40: // TRAP
		c.trap(int(op & 0xF))
		return
	case op&0xFFC0 == 0x4E80: // JSR
		mode := int((op >> 3) & 7)
		reg := int(op & 7)
		e := c.resolveEA(mode, reg, SizeLong)
		if !e.isMem {
			c.illegal()
			return
		}
		c.A[7] -= 4
		c.mem.Write32(c.A[7], c.PC)
		c.PC = e.addr
		return
	case op&0xFFC0 == 0x4EC0: // JMP
		mode := int((op >> 3) & 7)
		reg := int(op & 7)
		e := c.resolveEA(mode, reg, SizeLong)
		if !e.isMem {
			c.illegal()
			return
		}
		c.PC = e.addr
		return
	}

	// SWAP and EXT are mode-Dn-direct special cases inside what is
	// otherwise the PEA/MOVEM opcode space, so check their narrower
	// masks before the wider ones.
	switch {
	case op&0xFFF8 == 0x4840: // SWAP
		c.execSwap(op)
		return
	case op&0xFFF8 == 0x4880: // EXT.W
		c.execExt(op)
		return
	case op&0xFFF8 == 0x48C0: // EXT.L
		c.execExt(op)
		return
	case op&0xF1C0 == 0x4180: // CHK.W
		c.execChk(op)
		return
	case op&0xF1C0 == 0x41C0: // LEA
		c.execLea(op)
		return
	case op&0xFFC0 == 0x4840: // PEA
		c.execPea(op)
		return
	case op&0xFB80 == 0x4880: // MOVEM
		c.execMovem(op)
		return
	}

	switch {
	case op&0xFFC0 == 0x40C0: // MOVE SR,<ea>
		mode := int((op >> 3) & 7)
		reg := int(op & 7)
		e := c.resolveEA(mode, reg, SizeWord)
		e.set(SizeWord, uint32(c.SR))
		return
	case op&0xFFC0 == 0x44C0: // MOVE <ea>,CCR
		mode := int((op >> 3) & 7)
		reg := int(op & 7)
		e := c.resolveEA(mode, reg, SizeWord)
		v := e.get(SizeWord)
		c.SR = (c.SR &^ 0x00FF) | uint16(v&0x00FF)
		return
	case op&0xFFC0 == 0x46C0: // MOVE <ea>,SR
		if !c.Supervisor() {
			c.privilegeViolation()
			return
		}
		mode := int((op >> 3) & 7)
		reg := int(op & 7)
		e := c.resolveEA(mode, reg, SizeWord)
		c.SR = uint16(e.get(SizeWord))
		return
	}

	switch (op >> 8) & 0x0F {
	case 0x0: // NEGX
		c.execUnary(op, unaryNegx)
		return
	case 0x2: // CLR
		c.execUnary(op, unaryClr)
		return
	case 0x4: // NEG
		c.execUnary(op, unaryNeg)
		return
	case 0x6: // NOT
		c.execUnary(op, unaryNot)
		return
	case 0x8:
		if op&0x00C0 == 0x00C0 {
			c.execChk(op)
			return
		}
		c.execNbcd(op)
		return
	case 0xA:
		if op&0x00C0 == 0x00C0 {
			c.execTas(op)
			return
		}
		c.execUnary(op, unaryTst)
		return
	}
	c.illegal()
}

type unaryKind int

const (
	unaryNegx unaryKind = iota
	unaryClr
	unaryNeg
	unaryNot
	unaryTst
)

func (c *CPU) execUnary(op uint16, kind unaryKind) {
	size := sizeField((op >> 6) & 3)
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	e := c.resolveEA(mode, reg, size)
	v := e.get(size)

	switch kind {
	case unaryClr:
		e.set(size, 0)
		c.logicFlags(0, size)
	case unaryNot:
		result := (^v) & size.mask()
		e.set(size, result)
		c.logicFlags(result, size)
	case unaryNeg:
		result := (0 - v) & size.mask()
		c.subFlags(0, v, result, size)
		e.set(size, result)
	case unaryNegx:
		x := uint32(0)
		if c.flagX() {
			x = 1
		}
		result := (0 - v - x) & size.mask()
		c.subFlags(0, v+x, result, size)
		if result != 0 {
			c.setFlag(srZ, false)
		}
		e.set(size, result)
	case unaryTst:
		c.logicFlags(v, size)
	}
}

// execTas implements TAS: test the operand's flags, then set its top
// bit in a single (here, non-atomic, single-threaded) read-modify-
// write cycle.
func (c *CPU) execTas(op uint16) {
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	e := c.resolveEA(mode, reg, SizeByte)
	v := e.get(SizeByte)
	c.logicFlags(v, SizeByte)
	e.set(SizeByte, v|0x80)
}

func (c *CPU) execChk(op uint16) {
	reg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	e := c.resolveEA(mode, eaReg, SizeWord)
	bound := int16(e.get(SizeWord))
	v := int16(c.D[reg] & 0xFFFF)
	if v < 0 || v > bound {
		c.setFlag(srN, v < 0)
		c.raiseException(vecCHK, 0, false)
	}
}

func (c *CPU) execNbcd(op uint16) {
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	e := c.resolveEA(mode, reg, SizeByte)
	v := e.get(SizeByte)
	x := uint32(0)
	if c.flagX() {
		x = 1
	}
	lo := int32(0) - int32(v&0xF) - int32(x)
	hi := int32(0) - int32(v>>4&0xF)
	if lo < 0 {
		lo += 10
		hi--
	}
	carry := false
	if hi < 0 {
		hi += 10
		carry = true
	}
	result := (uint32(hi&0xF) << 4) | uint32(lo&0xF)
	c.setFlag(srC, carry)
	c.setFlag(srX, carry)
	if result != 0 {
		c.setFlag(srZ, false)
	}
	e.set(SizeByte, result)
}

// execImmediate implements ORI/ANDI/SUBI/ADDI/EORI/CMPI, including the
// to-CCR and to-SR special forms when the destination field selects
// immediate mode 7/4 (the "ea = SR/CCR" encoding for ORI/ANDI/EORI
// uses ea mode 111 reg 100, the same bit pattern as an immediate
// source, which is otherwise meaningless as a destination).
func (c *CPU) execImmediate(op uint16, mnemonic string) {
	size := sizeField((op >> 6) & 3)
	mode := int((op >> 3) & 7)
	reg := int(op & 7)

	if mode == modeExt && reg == 4 {
		switch mnemonic {
		case "ORI":
			imm := c.fetchWord()
			if size == SizeByte {
				c.SR |= imm & 0x00FF
			} else {
				c.requireSupervisor(func() { c.SR |= imm })
			}
			return
		case "ANDI":
			imm := c.fetchWord()
			if size == SizeByte {
				c.SR = (c.SR &^ 0x00FF) | (c.SR & imm & 0x00FF)
			} else {
				c.requireSupervisor(func() { c.SR &= imm })
			}
			return
		case "EORI":
			imm := c.fetchWord()
			if size == SizeByte {
				c.SR = (c.SR &^ 0x00FF) | ((c.SR ^ imm) & 0x00FF)
			} else {
				c.requireSupervisor(func() { c.SR ^= imm })
			}
			return
		}
	}

	var imm uint32
	if size == SizeLong {
		imm = c.fetchLong()
	} else {
		w := c.fetchWord()
		if size == SizeByte {
			imm = uint32(w & 0xFF)
		} else {
			imm = uint32(w)
		}
	}

	e := c.resolveEA(mode, reg, size)
	v := e.get(size)
	var result uint32
	switch mnemonic {
	case "ORI":
		result = v | imm
		c.logicFlags(result, size)
	case "ANDI":
		result = v & imm
		c.logicFlags(result, size)
	case "EORI":
		result = v ^ imm
		c.logicFlags(result, size)
	case "ADDI":
		result = (v + imm) & size.mask()
		c.addFlags(v, imm, result, size)
	case "SUBI":
		result = (v - imm) & size.mask()
		c.subFlags(v, imm, result, size)
	case "CMPI":
		result = (v - imm) & size.mask()
		c.subFlags(v, imm, result, size)
		return // CMPI never writes back
	}
	e.set(size, result)
}

func (c *CPU) requireSupervisor(f func()) {
	if !c.Supervisor() {
		c.privilegeViolation()
		return
	}
	f()
}

// execBitDynamic implements BTST/BCHG/BCLR/BSET with the bit number in
// a data register.
func (c *CPU) execBitDynamic(op uint16) {
	reg := int((op >> 9) & 7)
	which := (op >> 6) & 3
	c.execBit(op, which, c.D[reg])
}

// execBitStatic implements the same four operations with the bit
// number as an immediate extension word.
func (c *CPU) execBitStatic(op uint16) {
	which := (op >> 6) & 3
	imm := c.fetchWord()
	c.execBit(op, which, uint32(imm))
}

func (c *CPU) execBit(op uint16, which uint16, bitSrc uint32) {
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	size := SizeLong
	if mode != modeDreg {
		size = SizeByte
	}
	bit := bitSrc % uint32(size*8)

	e := c.resolveEA(mode, reg, size)
	v := e.get(size)
	set := v&(1<<bit) != 0
	c.setFlag(srZ, !set)

	switch which {
	case 0: // BTST
		return
	case 1: // BCHG
		e.set(size, v^(1<<bit))
	case 2: // BCLR
		e.set(size, v&^(1<<bit))
	case 3: // BSET
		e.set(size, v|(1<<bit))
	}
}
