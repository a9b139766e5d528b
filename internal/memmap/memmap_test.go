package memmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tclark/gsmac/internal/device"
)

func TestRAMRoundTrip(t *testing.T) {
	m := New()
	ram := make([]byte, 64*1024)
	m.MapRAM(0, uint32(len(ram)), ram)

	m.Write8(10, 0x42)
	assert.Equal(t, uint8(0x42), m.Read8(10))

	m.Write16(20, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), m.Read16(20))
	assert.Equal(t, uint8(0xBE), m.Read8(20))
	assert.Equal(t, uint8(0xEF), m.Read8(21))

	m.Write32(40, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), m.Read32(40))
}

func TestStraddlesPageBoundary(t *testing.T) {
	m := New()
	ram := make([]byte, 3*4096)
	m.MapRAM(0, uint32(len(ram)), ram)

	// Word straddling the first page boundary (addr 4095/4096).
	m.Write8(4095, 0x12)
	m.Write8(4096, 0x34)
	assert.Equal(t, uint16(0x1234), m.Read16(4095))

	m.Write32(4094, 0xAABBCCDD)
	assert.Equal(t, uint32(0xAABBCCDD), m.Read32(4094))
}

func TestROMWritesAreNoOps(t *testing.T) {
	m := New()
	rom := []byte{1, 2, 3, 4}
	m.MapROM(0x400000, uint32(len(rom)), rom)

	before := m.Read8(0x400000)
	m.Write8(0x400000, 0xFF)
	assert.Equal(t, before, m.Read8(0x400000))
}

func TestUnmappedReadsAreZero(t *testing.T) {
	m := New()
	assert.Equal(t, uint8(0), m.Read8(0x900000))
	assert.Equal(t, uint16(0), m.Read16(0x900000))
	assert.Equal(t, uint32(0), m.Read32(0x900000))
}

func TestDeviceDispatchOffset(t *testing.T) {
	m := New()
	var gotOffset uint32 = 0xFFFFFFFF
	dev := device.ByteDevice{
		Read: func(off uint32) uint8 {
			gotOffset = off
			return 0x55
		},
		Write: func(off uint32, v uint8) {
			gotOffset = off
		},
	}
	const base = 0xEFE1FE
	m.MapDevice(base, 0x200, dev)

	v := m.Read8(base + 5)
	assert.Equal(t, uint8(0x55), v)
	assert.Equal(t, uint32(5), gotOffset)

	m.Write8(base+9, 0xAA)
	assert.Equal(t, uint32(9), gotOffset)
}
