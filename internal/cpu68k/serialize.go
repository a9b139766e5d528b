/*
   gsmac cpu68k: checkpoint serialization.

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

import "encoding/binary"

// State is the flat, versioned register snapshot persisted by a
// checkpoint. It intentionally excludes VectorBase, which is a
// machine construction parameter rather than runtime state.
type State struct {
	D            [8]uint32
	A            [8]uint32
	SSP          uint32
	USP          uint32
	PC           uint32
	SR           uint16
	PendingIPL   int32
	Stopped      bool
	HaltedDouble bool
}

// Snapshot captures the current register file for checkpointing.
func (c *CPU) Snapshot() State {
	return State{
		D: c.D, A: c.A,
		SSP: c.SSP, USP: c.USP, PC: c.PC, SR: c.SR,
		PendingIPL:   int32(c.pendingIPL),
		Stopped:      c.stopped,
		HaltedDouble: c.haltedDouble,
	}
}

// Restore loads a previously captured register file, as part of
// resuming from a checkpoint stream.
func (c *CPU) Restore(s State) {
	c.D, c.A = s.D, s.A
	c.SSP, c.USP, c.PC, c.SR = s.SSP, s.USP, s.PC, s.SR
	c.pendingIPL = int(s.PendingIPL)
	c.stopped = s.Stopped
	c.haltedDouble = s.HaltedDouble
}

// MarshalBinary encodes the state as a fixed-width big-endian record,
// matching the byte order the rest of the machine uses on the wire.
func (s State) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8*4+8*4+4+4+4+2+4+1+1)
	off := 0
	for _, v := range s.D {
		binary.BigEndian.PutUint32(buf[off:], v)
		off += 4
	}
	for _, v := range s.A {
		binary.BigEndian.PutUint32(buf[off:], v)
		off += 4
	}
	binary.BigEndian.PutUint32(buf[off:], s.SSP)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], s.USP)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], s.PC)
	off += 4
	binary.BigEndian.PutUint16(buf[off:], s.SR)
	off += 2
	binary.BigEndian.PutUint32(buf[off:], uint32(s.PendingIPL))
	off += 4
	if s.Stopped {
		buf[off] = 1
	}
	off++
	if s.HaltedDouble {
		buf[off] = 1
	}
	return buf, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (s *State) UnmarshalBinary(buf []byte) error {
	off := 0
	for i := range s.D {
		s.D[i] = binary.BigEndian.Uint32(buf[off:])
		off += 4
	}
	for i := range s.A {
		s.A[i] = binary.BigEndian.Uint32(buf[off:])
		off += 4
	}
	s.SSP = binary.BigEndian.Uint32(buf[off:])
	off += 4
	s.USP = binary.BigEndian.Uint32(buf[off:])
	off += 4
	s.PC = binary.BigEndian.Uint32(buf[off:])
	off += 4
	s.SR = binary.BigEndian.Uint16(buf[off:])
	off += 2
	s.PendingIPL = int32(binary.BigEndian.Uint32(buf[off:]))
	off += 4
	s.Stopped = buf[off] != 0
	off++
	s.HaltedDouble = buf[off] != 0
	return nil
}
