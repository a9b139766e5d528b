package machine

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tclark/gsmac/internal/checkpoint"
	"github.com/tclark/gsmac/internal/config"
)

// writeTestROM builds a minimal ROM image whose first two long words
// are the initial SSP and PC, the only two values cpu68k.Reset reads.
func writeTestROM(t *testing.T, dir string, ssp, pc uint32) string {
	t.Helper()
	rom := make([]byte, 64)
	binary.BigEndian.PutUint32(rom[0:], ssp)
	binary.BigEndian.PutUint32(rom[4:], pc)
	path := filepath.Join(dir, "rom.bin")
	require.NoError(t, os.WriteFile(path, rom, 0o644))
	return path
}

func testProfile(t *testing.T) *config.Profile {
	t.Helper()
	dir := t.TempDir()
	romPath := writeTestROM(t, dir, 0x00001000, 0x00000010)
	return &config.Profile{
		Model:      "plus",
		RAMBytes:   0x2000,
		ROMPath:    romPath,
		TimingMode: "unbounded",
	}
}

func TestNewWiresEveryDevice(t *testing.T) {
	m, err := New(testProfile(t), nil)
	require.NoError(t, err)
	require.NotNil(t, m.mem)
	require.NotNil(t, m.cpu)
	require.NotNil(t, m.sched)
	require.NotNil(t, m.sched.RunInstruction)
}

func TestResetLoadsVectorsFromOverlay(t *testing.T) {
	m, err := New(testProfile(t), nil)
	require.NoError(t, err)
	m.Reset()
	require.Equal(t, uint32(0x00001000), m.cpu.SSP)
	require.Equal(t, uint32(0x00000010), m.PC())
}

func TestOverlaySwitchExposesRAM(t *testing.T) {
	m, err := New(testProfile(t), nil)
	require.NoError(t, err)
	m.Reset()

	// Overlay on: address 0 reads the ROM vector's high byte.
	require.Equal(t, uint8(0x00), m.mem.Read8(0))

	m.onPortAWrite(0x10) // bit 4 set: overlay disabled, RAM visible at 0
	m.mem.Write8(0, 0xAB)
	require.Equal(t, uint8(0xAB), m.mem.Read8(0))

	m.onPortAWrite(0x00) // overlay re-enabled
	require.Equal(t, uint8(0x00), m.mem.Read8(0))
}

func TestCheckpointQuickRoundTrip(t *testing.T) {
	profile := testProfile(t)
	m1, err := New(profile, nil)
	require.NoError(t, err)
	m1.Reset()
	m1.cpu.D[0] = 0xCAFEBABE
	m1.cpu.PC = 0x00000020
	m1.ram[100] = 0x7F

	var buf bytes.Buffer
	require.NoError(t, m1.Save(&buf, checkpoint.KindQuick))

	m2, err := New(profile, nil)
	require.NoError(t, err)
	require.NoError(t, m2.Load(&buf, checkpoint.KindQuick))

	require.Equal(t, m1.cpu.D[0], m2.cpu.D[0])
	require.Equal(t, m1.cpu.PC, m2.cpu.PC)
	require.Equal(t, m1.ram, m2.ram)
}

func TestCheckpointConsolidatedRoundTrip(t *testing.T) {
	profile := testProfile(t)
	m1, err := New(profile, nil)
	require.NoError(t, err)
	m1.Reset()
	m1.cpu.A[3] = 0x00112233

	var buf bytes.Buffer
	require.NoError(t, m1.Save(&buf, checkpoint.KindConsolidated))

	m2, err := New(profile, nil)
	require.NoError(t, err)
	require.NoError(t, m2.Load(&buf, checkpoint.KindConsolidated))

	require.Equal(t, m1.cpu.A, m2.cpu.A)
}

func TestCommandDispatchReadsRegisters(t *testing.T) {
	m, err := New(testProfile(t), nil)
	require.NoError(t, err)
	m.Reset()
	out, err := m.Commands.Dispatch("regs")
	require.NoError(t, err)
	require.Contains(t, out, "PC=")
}

func TestMouseAndKeyboardInputReachDevices(t *testing.T) {
	m, err := New(testProfile(t), nil)
	require.NoError(t, err)
	m.KeyEvent(0x41, true)
	require.Equal(t, uint8(0x41<<1), m.via.SR)

	m.MouseButton(true)
	require.True(t, m.mouseButton)
}
