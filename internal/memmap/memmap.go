/*
   gsmac memmap: page-table address space.

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

// Package memmap implements the 4KB-page address space that backs
// every CPU memory access: direct RAM/ROM byte slices on the fast
// path, a device vtable dispatch on the slow path.
package memmap

import "github.com/tclark/gsmac/internal/device"

const (
	pageShift = 12
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1

	// AddrMask is the global address-bus mask (24 bits on the Plus).
	AddrMask uint32 = 0x00FFFFFF

	numPages = (int(AddrMask) + 1) / pageSize
)

type pageKind int

const (
	pageUnmapped pageKind = iota
	pageRAM
	pageROM
	pageDevice
)

type page struct {
	kind    pageKind
	host    []byte // RAM/ROM backing buffer, len >= pageSize
	dev     device.MappedDevice
	base    uint32 // guest base address of this page, for offset rebasing
}

// Map is one complete page table. It has no accessor or swap
// operation for an active table: a Machine builds one Map and remaps
// ranges of it in place.
type Map struct {
	pages [numPages]page
}

func New() *Map {
	return &Map{}
}

func pageIndex(addr uint32) uint32 {
	return (addr & AddrMask) >> pageShift
}

// MapRAM installs size bytes of writable host memory starting at base.
// base and size must be page-aligned; the last call covering an
// address wins on overlap.
func (m *Map) MapRAM(base, size uint32, host []byte) {
	m.mapRange(base, size, host, pageRAM, nil)
}

// MapROM installs size bytes of read-only host memory starting at base.
func (m *Map) MapROM(base, size uint32, host []byte) {
	m.mapRange(base, size, host, pageROM, nil)
}

// MapDevice installs a device handler covering [base, base+size).
// Every page in the range shares the same handler; the offset passed
// to the handler is always addr-base, not addr-page_base, so a
// multi-page device sees one contiguous address space.
func (m *Map) MapDevice(base, size uint32, dev device.MappedDevice) {
	m.mapRange(base, size, nil, pageDevice, dev)
}

func (m *Map) mapRange(base, size uint32, host []byte, kind pageKind, dev device.MappedDevice) {
	base &= AddrMask
	first := pageIndex(base)
	count := (size + pageMask) / pageSize
	for i := uint32(0); i < count; i++ {
		idx := (first + i) % uint32(numPages)
		var hostSlice []byte
		if host != nil {
			lo := i * pageSize
			hi := lo + pageSize
			if int(hi) > len(host) {
				hi = uint32(len(host))
			}
			if int(lo) < len(host) {
				hostSlice = host[lo:hi]
			}
		}
		m.pages[idx] = page{kind: kind, host: hostSlice, dev: dev, base: base}
	}
}

func (m *Map) pageFor(addr uint32) *page {
	return &m.pages[pageIndex(addr)]
}

// Read8 returns the byte at addr. Unmapped reads return 0.
func (m *Map) Read8(addr uint32) uint8 {
	p := m.pageFor(addr)
	switch p.kind {
	case pageRAM, pageROM:
		off := (addr & AddrMask) & pageMask
		if int(off) < len(p.host) {
			return p.host[off]
		}
		return 0
	case pageDevice:
		return p.dev.ReadByte((addr & AddrMask) - p.base)
	default:
		return 0
	}
}

// Write8 stores value at addr. Writes to ROM or unmapped pages are
// silently dropped; no fault is raised.
func (m *Map) Write8(addr uint32, value uint8) {
	p := m.pageFor(addr)
	switch p.kind {
	case pageRAM:
		off := (addr & AddrMask) & pageMask
		if int(off) < len(p.host) {
			p.host[off] = value
		}
	case pageDevice:
		p.dev.WriteByte((addr&AddrMask)-p.base, value)
	default:
		// ROM and unmapped: no-op.
	}
}

// straddles reports whether a width-byte access at addr crosses a 4KB
// page boundary; the inline fast path is taken only when it does not.
func straddles(addr uint32, width uint32) bool {
	off := (addr & AddrMask) & pageMask
	return off > pageSize-width
}

// Read16 is big-endian. Accesses that cross a page boundary decompose
// into two byte accesses, which may land on an adjacent device page.
func (m *Map) Read16(addr uint32) uint16 {
	if !straddles(addr, 2) {
		p := m.pageFor(addr)
		if p.kind == pageRAM || p.kind == pageROM {
			off := (addr & AddrMask) & pageMask
			if int(off)+2 <= len(p.host) {
				return uint16(p.host[off])<<8 | uint16(p.host[off+1])
			}
			return 0
		}
		if p.kind == pageDevice {
			return p.dev.ReadWord((addr & AddrMask) - p.base)
		}
		return 0
	}
	hi := uint16(m.Read8(addr))
	lo := uint16(m.Read8(addr + 1))
	return hi<<8 | lo
}

func (m *Map) Write16(addr uint32, value uint16) {
	if !straddles(addr, 2) {
		p := m.pageFor(addr)
		switch p.kind {
		case pageRAM:
			off := (addr & AddrMask) & pageMask
			if int(off)+2 <= len(p.host) {
				p.host[off] = uint8(value >> 8)
				p.host[off+1] = uint8(value)
			}
			return
		case pageDevice:
			p.dev.WriteWord((addr&AddrMask)-p.base, value)
			return
		default:
			return
		}
	}
	m.Write8(addr, uint8(value>>8))
	m.Write8(addr+1, uint8(value))
}

// Read32 is big-endian, decomposing into byte accesses across a page
// boundary exactly as Read16 does.
func (m *Map) Read32(addr uint32) uint32 {
	if !straddles(addr, 4) {
		p := m.pageFor(addr)
		if p.kind == pageRAM || p.kind == pageROM {
			off := (addr & AddrMask) & pageMask
			if int(off)+4 <= len(p.host) {
				return uint32(p.host[off])<<24 | uint32(p.host[off+1])<<16 |
					uint32(p.host[off+2])<<8 | uint32(p.host[off+3])
			}
			return 0
		}
		if p.kind == pageDevice {
			return p.dev.ReadLong((addr & AddrMask) - p.base)
		}
		return 0
	}
	hi := uint32(m.Read16(addr))
	lo := uint32(m.Read16(addr + 2))
	return hi<<16 | lo
}

func (m *Map) Write32(addr uint32, value uint32) {
	if !straddles(addr, 4) {
		p := m.pageFor(addr)
		switch p.kind {
		case pageRAM:
			off := (addr & AddrMask) & pageMask
			if int(off)+4 <= len(p.host) {
				p.host[off] = uint8(value >> 24)
				p.host[off+1] = uint8(value >> 16)
				p.host[off+2] = uint8(value >> 8)
				p.host[off+3] = uint8(value)
			}
			return
		case pageDevice:
			p.dev.WriteLong((addr&AddrMask)-p.base, value)
			return
		default:
			return
		}
	}
	m.Write16(addr, uint16(value>>16))
	m.Write16(addr+2, uint16(value))
}
