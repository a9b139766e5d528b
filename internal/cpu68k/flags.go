/*
   gsmac cpu68k: condition code flag helpers.

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

func (c *CPU) setFlag(mask uint16, v bool) {
	if v {
		c.SR |= mask
	} else {
		c.SR &^= mask
	}
}

func (c *CPU) flagC() bool { return c.SR&srC != 0 }
func (c *CPU) flagX() bool { return c.SR&srX != 0 }

func signBit(v uint32, size Size) bool {
	return v&size.signBit() != 0
}

// setNZ sets N and Z from a sized result; it never touches C/V/X.
func (c *CPU) setNZ(result uint32, size Size) {
	masked := result & size.mask()
	c.setFlag(srZ, masked == 0)
	c.setFlag(srN, signBit(masked, size))
}

// addFlags computes the C/V/X flags for dst+src=result at the given
// size, following the standard sign-of-operands-vs-sign-of-result
// overflow rule.
func (c *CPU) addFlags(dst, src, result uint32, size Size) {
	d, s, r := signBit(dst, size), signBit(src, size), signBit(result, size)
	carry := carryOut(dst, src, result, size)
	overflow := d == s && r != d
	c.setFlag(srC, carry)
	c.setFlag(srX, carry)
	c.setFlag(srV, overflow)
	c.setNZ(result, size)
}

// subFlags computes C/V/X for dst-src=result.
func (c *CPU) subFlags(dst, src, result uint32, size Size) {
	d, s, r := signBit(dst, size), signBit(src, size), signBit(result, size)
	borrow := borrowOut(dst, src, size)
	overflow := d != s && r != d
	c.setFlag(srC, borrow)
	c.setFlag(srX, borrow)
	c.setFlag(srV, overflow)
	c.setNZ(result, size)
}

func carryOut(dst, src, result uint32, size Size) bool {
	m := size.mask()
	return (uint64(dst&m) + uint64(src&m)) > uint64(m)
}

func borrowOut(dst, src uint32, size Size) bool {
	m := size.mask()
	return (dst & m) < (src & m)
}

// logicFlags sets N/Z from result and clears C and V, as every
// logical instruction (AND/OR/EOR/NOT/MOVE/CLR/TST) does.
func (c *CPU) logicFlags(result uint32, size Size) {
	c.setNZ(result, size)
	c.setFlag(srC, false)
	c.setFlag(srV, false)
}
