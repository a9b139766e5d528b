/*
   gsmac cpu68k: exception and interrupt processing.

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

// Standard M68000 exception vector numbers.
const (
	vecReset          = 0
	vecBusError       = 2
	vecAddressError   = 3
	vecIllegalInstr   = 4
	vecZeroDivide     = 5
	vecCHK            = 6
	vecTRAPV          = 7
	vecPrivilege      = 8
	vecTrace          = 9
	vecLineA          = 10
	vecLineF          = 11
	vecSpuriousIRQ    = 24
	vecLevel1IRQ      = 25 // vecLevel1IRQ + level-1 gives each autovector
	vecTrap0          = 32
)

// raiseException pushes PC and SR, enters supervisor mode, masks
// interrupts at or below newIPL when nonzero, and loads PC from the
// given vector. Nothing here detects a nested (double) fault:
// haltedDouble is only checked, never set, by this routine, so it is
// true only when a restored checkpoint state carries it.
func (c *CPU) raiseException(vector int, newIPL int, setIPL bool) {
	if c.haltedDouble {
		return
	}
	sr := c.SR
	wasSupervisor := c.Supervisor()
	c.setSupervisor(true)
	c.A[7] -= 4
	c.mem.Write32(c.A[7], c.PC)
	c.A[7] -= 2
	c.mem.Write16(c.A[7], sr)
	if setIPL {
		c.SR = (c.SR &^ srIPLMask) | uint16(newIPL<<8)
	}
	c.stopped = false
	vectorAddr := c.VectorBase + uint32(vector)*4
	c.PC = c.mem.Read32(vectorAddr)
	_ = wasSupervisor
}

func (c *CPU) illegal() {
	c.PC -= 2 // back up over the word that triggered this
	c.raiseException(vecIllegalInstr, 0, false)
}

func (c *CPU) privilegeViolation() {
	c.PC -= 2
	c.raiseException(vecPrivilege, 0, false)
}

func (c *CPU) addressError() {
	c.raiseException(vecAddressError, 0, false)
}

func (c *CPU) trap(n int) {
	c.raiseException(vecTrap0+n, 0, false)
}

// takeInterrupt is invoked by RunInstruction when pendingIPL exceeds
// the status register's mask at an instruction boundary. It stacks PC
// and SR, sets supervisor mode, masks interrupts at the serviced
// level, and vectors through the level's autovector (spurious and
// device vectoring are not distinguished since no peripheral on this
// machine supplies its own vector number).
func (c *CPU) takeInterrupt(level int) {
	c.raiseException(vecLevel1IRQ+level-1, level, true)
}
