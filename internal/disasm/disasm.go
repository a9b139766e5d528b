/*
   gsmac disasm: one-line M68000 instruction formatter.

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

// Package disasm renders M68000 instruction words as one-line
// mnemonic text for the command registry's "disasm" verb and the
// debug view, covering the instruction-line groups internal/cpu68k
// actually implements. It does not execute or validate instructions;
// a word this package can't classify renders as "DC.W $xxxx".
package disasm

import (
	"fmt"
	"strings"
)

// Memory is the subset of memmap.Map a disassembler needs to fetch
// instruction words and extension words without mutating machine
// state.
type Memory interface {
	Read16(addr uint32) uint16
}

// Instruction is one decoded line: its address, word length in
// bytes, and rendered mnemonic text.
type Instruction struct {
	Addr uint32
	Len  uint32
	Text string
}

// Disassemble renders count instructions starting at addr.
func Disassemble(mem Memory, addr uint32, count int) []Instruction {
	out := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		ins := one(mem, addr)
		out = append(out, ins)
		addr += ins.Len
	}
	return out
}

func one(mem Memory, addr uint32) Instruction {
	op := mem.Read16(addr)
	d := &decoder{mem: mem, pc: addr + 2}
	text := d.line(op)
	return Instruction{Addr: addr, Len: d.pc - addr, Text: text}
}

type decoder struct {
	mem Memory
	pc  uint32
}

func (d *decoder) fetchWord() uint16 {
	w := d.mem.Read16(d.pc)
	d.pc += 2
	return w
}

func (d *decoder) fetchLong() uint32 {
	hi := uint32(d.fetchWord())
	lo := uint32(d.fetchWord())
	return hi<<16 | lo
}

var sizeSuffix = [4]string{"B", "?", "W", "L"} // sizeBits 00=byte,01=?,10=word,11=long (standard size field layout; the MOVE size field, 01=byte 11=word 10=long, is decoded in line)

func (d *decoder) line(op uint16) string {
	switch op >> 12 {
	case 0x0:
		return d.line0(op)
	case 0x1:
		return d.move(op, "B")
	case 0x2:
		return d.move(op, "L")
	case 0x3:
		return d.move(op, "W")
	case 0x4:
		return d.line4(op)
	case 0x5:
		return d.line5(op)
	case 0x6:
		return d.line6(op)
	case 0x7:
		return fmt.Sprintf("MOVEQ #$%02X,D%d", uint8(op), (op>>9)&7)
	case 0x8:
		return d.lineArith(op, "OR", "DIVU", "DIVS", "SBCD")
	case 0x9:
		return d.lineArith(op, "SUB", "SUBA.W", "SUBA.L", "SUBX")
	case 0xB:
		return d.lineArith(op, "CMP", "CMPA.W", "CMPA.L", "EOR")
	case 0xC:
		return d.lineArith(op, "AND", "MULU", "MULS", "ABCD")
	case 0xD:
		return d.lineArith(op, "ADD", "ADDA.W", "ADDA.L", "ADDX")
	case 0xE:
		return d.line5Shift(op)
	default:
		return fmt.Sprintf("DC.W $%04X", op)
	}
}

func (d *decoder) line0(op uint16) string {
	if op&0xF000 == 0 && op&0x38 != 0x08 && op&0x0100 != 0 {
		names := []string{"BTST", "BCHG", "BCLR", "BSET"}
		return fmt.Sprintf("%s D%d,%s", names[(op>>6)&3], (op>>9)&7, d.ea(op, 1))
	}
	if op&0xF138 == 0x0108 {
		return fmt.Sprintf("MOVEP D%d,%s", (op>>9)&7, d.ea(op, 1))
	}
	switch (op >> 8) & 0x0F {
	case 0x0:
		return d.immediate(op, "ORI")
	case 0x2:
		return d.immediate(op, "ANDI")
	case 0x4:
		return d.immediate(op, "SUBI")
	case 0x6:
		return d.immediate(op, "ADDI")
	case 0xA:
		return d.immediate(op, "EORI")
	case 0xC:
		return d.immediate(op, "CMPI")
	case 0x8:
		names := []string{"BTST", "BCHG", "BCLR", "BSET"}
		return fmt.Sprintf("%s #$%02X,%s", names[(op>>6)&3], d.fetchWord()&0xFF, d.ea(op, 1))
	}
	return fmt.Sprintf("DC.W $%04X", op)
}

func (d *decoder) immediate(op uint16, name string) string {
	size := (op >> 6) & 3
	var imm uint32
	switch size {
	case 0:
		imm = uint32(d.fetchWord() & 0xFF)
	case 1:
		imm = uint32(d.fetchWord())
	case 2:
		imm = d.fetchLong()
	}
	return fmt.Sprintf("%s.%s #$%X,%s", name, sizeLetter(size), imm, d.ea(op, sizeBytes(size)))
}

func (d *decoder) move(op uint16, destSize string) string {
	srcMode, srcReg := (op>>3)&7, op&7
	dstReg, dstMode := (op>>9)&7, (op>>6)&7
	src := d.eaText(srcMode, srcReg, sizeBytesLetter(destSize))
	dst := d.eaText(dstMode, dstReg, sizeBytesLetter(destSize))
	return fmt.Sprintf("MOVE.%s %s,%s", destSize, src, dst)
}

func (d *decoder) line4(op uint16) string {
	switch {
	case op == 0x4E71:
		return "NOP"
	case op == 0x4E75:
		return "RTS"
	case op == 0x4E73:
		return "RTE"
	case op&0xFFC0 == 0x4E80:
		return fmt.Sprintf("JSR %s", d.ea(op, 4))
	case op&0xFFC0 == 0x4EC0:
		return fmt.Sprintf("JMP %s", d.ea(op, 4))
	case op&0xFF00 == 0x4A00:
		return fmt.Sprintf("TST.%s %s", sizeLetter((op>>6)&3), d.ea(op, sizeBytes((op>>6)&3)))
	case op&0xFFC0 == 0x4840 && op&0xFFF8 == 0x4840:
		return fmt.Sprintf("SWAP D%d", op&7)
	case op&0xFF00 == 0x4200:
		return fmt.Sprintf("CLR.%s %s", sizeLetter((op>>6)&3), d.ea(op, sizeBytes((op>>6)&3)))
	case op&0xFF00 == 0x4400:
		return fmt.Sprintf("NEG.%s %s", sizeLetter((op>>6)&3), d.ea(op, sizeBytes((op>>6)&3)))
	case op&0xFF00 == 0x4600:
		return fmt.Sprintf("NOT.%s %s", sizeLetter((op>>6)&3), d.ea(op, sizeBytes((op>>6)&3)))
	case op&0xFFC0 == 0x41C0:
		return fmt.Sprintf("LEA %s,A%d", d.ea(op, 4), (op>>9)&7)
	case op&0xF1C0 == 0x4180:
		return fmt.Sprintf("CHK %s,D%d", d.ea(op, 2), (op>>9)&7)
	case op&0xFB80 == 0x4880:
		dir := "MOVEM regs,"
		if op&0x0400 != 0 {
			dir = "MOVEM "
		}
		mask := d.fetchWord()
		return fmt.Sprintf("%s#$%04X,%s", dir, mask, d.ea(op, 4))
	case op&0xFF00 == 0x4800 && op&0x00C0 == 0x00C0:
		return fmt.Sprintf("EXT.%s D%d", sizeLetter(1+((op>>6)&1)), op&7)
	case op&0xFFF0 == 0x4E40:
		return fmt.Sprintf("TRAP #%d", op&0xF)
	case op&0xFFFF == 0x4E70:
		return "RESET"
	}
	return fmt.Sprintf("DC.W $%04X", op)
}

func (d *decoder) line5(op uint16) string {
	if op&0xC0 == 0xC0 {
		cond := conditionName((op >> 8) & 0xF)
		if (op>>3)&7 == 1 {
			disp := int16(d.fetchWord())
			return fmt.Sprintf("DB%s D%d,$%X", cond, op&7, uint32(int32(d.pc)+int32(disp)-2))
		}
		return fmt.Sprintf("S%s %s", cond, d.ea(op, 1))
	}
	size := (op >> 6) & 3
	data := (op >> 9) & 7
	if data == 0 {
		data = 8
	}
	name := "ADDQ"
	if op&0x0100 != 0 {
		name = "SUBQ"
	}
	return fmt.Sprintf("%s.%s #%d,%s", name, sizeLetter(size), data, d.ea(op, sizeBytes(size)))
}

func (d *decoder) line5Shift(op uint16) string {
	names := [4]string{"ASR", "LSR", "ROXR", "ROR"}
	if op&0x0100 != 0 {
		names = [4]string{"ASL", "LSL", "ROXL", "ROL"}
	}
	kind := (op >> 3) & 3
	reg := op & 7
	countOrReg := (op >> 9) & 7
	if op&0x00C0 == 0x00C0 {
		return fmt.Sprintf("%s %s", names[(op>>9)&3], d.ea(op, 2))
	}
	src := fmt.Sprintf("#%d", countOrReg)
	if countOrReg == 0 {
		src = "#8"
	}
	if op&0x20 != 0 {
		src = fmt.Sprintf("D%d", countOrReg)
	}
	return fmt.Sprintf("%s.%s %s,D%d", names[kind], sizeLetter((op>>6)&3), src, reg)
}

func (d *decoder) line6(op uint16) string {
	cond := (op >> 8) & 0xF
	disp8 := int8(op)
	var target int32
	base := int32(d.pc)
	if disp8 == 0 {
		target = base + int32(int16(d.fetchWord()))
	} else {
		target = base + int32(disp8)
	}
	switch cond {
	case 0:
		return fmt.Sprintf("BRA $%X", uint32(target))
	case 1:
		return fmt.Sprintf("BSR $%X", uint32(target))
	default:
		return fmt.Sprintf("B%s $%X", conditionName(cond), uint32(target))
	}
}

func (d *decoder) lineArith(op uint16, regName, eaLongName, unused1, xName string) string {
	opmode := (op >> 6) & 7
	reg := (op >> 9) & 7
	switch opmode {
	case 3:
		return fmt.Sprintf("%s %s,A%d", eaLongName, d.ea(op, 2), reg)
	case 7:
		return fmt.Sprintf("%s %s,A%d", strings.TrimSuffix(eaLongName, ".W")+".L", d.ea(op, 4), reg)
	}
	if op&0x30 == 0x00 && opmode >= 4 {
		return fmt.Sprintf("%s D%d,%s", xName, reg, d.ea(op, sizeBytes(opmode&3)))
	}
	size := opmode & 3
	dirToEA := opmode&4 != 0
	if dirToEA {
		return fmt.Sprintf("%s.%s D%d,%s", regName, sizeLetter(size), reg, d.ea(op, sizeBytes(size)))
	}
	return fmt.Sprintf("%s.%s %s,D%d", regName, sizeLetter(size), d.ea(op, sizeBytes(size)), reg)
}

func sizeLetter(size uint16) string {
	switch size {
	case 0:
		return "B"
	case 1:
		return "W"
	case 2:
		return "L"
	}
	return "?"
}

func sizeBytes(size uint16) int {
	switch size {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 4
	}
	return 2
}

func sizeBytesLetter(s string) int {
	switch s {
	case "B":
		return 1
	case "L":
		return 4
	default:
		return 2
	}
}

func conditionName(cond uint16) string {
	names := []string{"RA", "SR", "HI", "LS", "CC", "CS", "NE", "EQ", "VC", "VS", "PL", "MI", "GE", "LT", "GT", "LE"}
	if int(cond) < len(names) {
		return names[cond]
	}
	return "??"
}

// ea formats the effective-address field (mode in bits 3-5, register
// in bits 0-2) of op, fetching extension words from the stream as
// needed for the given operand width in bytes.
func (d *decoder) ea(op uint16, width int) string {
	mode := (op >> 3) & 7
	reg := op & 7
	return d.eaModeText(mode, reg, width)
}

func (d *decoder) eaText(mode, reg uint16, width int) string {
	return d.eaModeText(mode, reg, width)
}

func (d *decoder) eaModeText(mode, reg uint16, width int) string {
	switch mode {
	case 0:
		return fmt.Sprintf("D%d", reg)
	case 1:
		return fmt.Sprintf("A%d", reg)
	case 2:
		return fmt.Sprintf("(A%d)", reg)
	case 3:
		return fmt.Sprintf("(A%d)+", reg)
	case 4:
		return fmt.Sprintf("-(A%d)", reg)
	case 5:
		disp := int16(d.fetchWord())
		return fmt.Sprintf("$%X(A%d)", disp, reg)
	case 6:
		ext := d.fetchWord()
		disp := int8(ext)
		idxReg := (ext >> 12) & 7
		idxName := "D"
		if ext&0x8000 != 0 {
			idxName = "A"
		}
		return fmt.Sprintf("$%X(A%d,%s%d)", disp, reg, idxName, idxReg)
	case 7:
		switch reg {
		case 0:
			return fmt.Sprintf("$%04X.W", d.fetchWord())
		case 1:
			return fmt.Sprintf("$%X.L", d.fetchLong())
		case 2:
			disp := int16(d.fetchWord())
			return fmt.Sprintf("$%X(PC)", uint32(int32(d.pc)+int32(disp)-2))
		case 3:
			d.fetchWord()
			return "(PC,Xn)"
		case 4:
			switch width {
			case 1:
				return fmt.Sprintf("#$%02X", d.fetchWord()&0xFF)
			case 4:
				return fmt.Sprintf("#$%X", d.fetchLong())
			default:
				return fmt.Sprintf("#$%X", d.fetchWord())
			}
		}
	}
	return "?"
}
