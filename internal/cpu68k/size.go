/*
   gsmac cpu68k: operand size helper.

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

// Size is the width of an instruction's data operand.
type Size uint8

const (
	SizeByte Size = 1
	SizeWord Size = 2
	SizeLong Size = 4
)

func (s Size) mask() uint32 {
	switch s {
	case SizeByte:
		return 0xFF
	case SizeWord:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

func (s Size) signBit() uint32 {
	switch s {
	case SizeByte:
		return 0x80
	case SizeWord:
		return 0x8000
	default:
		return 0x80000000
	}
}

// sizeFieldMove decodes the two-bit size field used by MOVE's opcode word
// (01=byte, 11=word, 10=long) - a different encoding than the
// standard 00/01/10 used by most other instructions.
func sizeFieldMove(bits uint16) Size {
	switch bits {
	case 1:
		return SizeByte
	case 3:
		return SizeWord
	default:
		return SizeLong
	}
}

// sizeField decodes the standard 00=byte/01=word/10=long field.
func sizeField(bits uint16) Size {
	switch bits {
	case 0:
		return SizeByte
	case 1:
		return SizeWord
	default:
		return SizeLong
	}
}

func signExtend(v uint32, size Size) uint32 {
	switch size {
	case SizeByte:
		if v&0x80 != 0 {
			return v | 0xFFFFFF00
		}
		return v & 0xFF
	case SizeWord:
		if v&0x8000 != 0 {
			return v | 0xFFFF0000
		}
		return v & 0xFFFF
	default:
		return v
	}
}
