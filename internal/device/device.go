/*
   gsmac device: memory-mapped device interface.

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

// Package device defines the vtable every memory-mapped peripheral
// implements so the memory map (internal/memmap) can dispatch CPU
// accesses without knowing the peripheral's concrete type.
package device

// MappedDevice is installed into a device-page of the address map.
// Offset is already rebased: addr - page_base.
type MappedDevice interface {
	ReadByte(offset uint32) uint8
	WriteByte(offset uint32, value uint8)
	ReadWord(offset uint32) uint16
	WriteWord(offset uint32, value uint16)
	ReadLong(offset uint32) uint32
	WriteLong(offset uint32, value uint32)
}

// ByteDevice is the common case: a device only addressed a byte at a
// time (IWM, VIA, SCC on the Plus bus). Embedding this promotes the
// wide accessors so a device only has to implement ReadByte/WriteByte.
type ByteDevice struct {
	Read  func(offset uint32) uint8
	Write func(offset uint32, value uint8)
}

func (b ByteDevice) ReadByte(offset uint32) uint8  { return b.Read(offset) }
func (b ByteDevice) WriteByte(offset uint32, v uint8) { b.Write(offset, v) }

func (b ByteDevice) ReadWord(offset uint32) uint16 {
	hi := uint16(b.Read(offset))
	lo := uint16(b.Read(offset + 1))
	return hi<<8 | lo
}

func (b ByteDevice) WriteWord(offset uint32, v uint16) {
	b.Write(offset, uint8(v>>8))
	b.Write(offset+1, uint8(v))
}

func (b ByteDevice) ReadLong(offset uint32) uint32 {
	hi := uint32(b.ReadWord(offset))
	lo := uint32(b.ReadWord(offset + 2))
	return hi<<16 | lo
}

func (b ByteDevice) WriteLong(offset uint32, v uint32) {
	b.WriteWord(offset, uint16(v>>16))
	b.WriteWord(offset+2, uint16(v))
}

// InterruptSink is the callback a subsystem uses to assert or
// de-assert its line on the CPU's interrupt priority encoder. Routing
// interrupts through a small interface instead of a direct pointer to
// the CPU avoids a circular import between peripherals and the CPU
// package.
type InterruptSink interface {
	RaiseInterrupt(level int)
	LowerInterrupt(level int)
}
