/*
   gsmac machine: root orchestration context wiring every subsystem.

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

// Package machine builds one Macintosh Plus out of the independent
// subsystem packages (cpu68k, memmap, scheduler, via, scc, iwm, scsi,
// rtc, sound, storage, checkpoint, command) and wires the handful of
// cross-device callbacks the real hardware routes through the VIA:
// the ROM overlay switch, the sound/screen buffer select, and the
// RTC's bit-bang lines. Device packages import only the shared
// device, memmap and scheduler packages, never each other; this
// package is the only place the devices are connected to each other.
package machine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tclark/gsmac/internal/command"
	"github.com/tclark/gsmac/internal/config"
	"github.com/tclark/gsmac/internal/cpu68k"
	"github.com/tclark/gsmac/internal/device"
	"github.com/tclark/gsmac/internal/iwm"
	"github.com/tclark/gsmac/internal/memmap"
	"github.com/tclark/gsmac/internal/rtc"
	"github.com/tclark/gsmac/internal/scc"
	"github.com/tclark/gsmac/internal/scheduler"
	"github.com/tclark/gsmac/internal/scsi"
	"github.com/tclark/gsmac/internal/sound"
	"github.com/tclark/gsmac/internal/storage"
	"github.com/tclark/gsmac/internal/via"
)

// Clock and address-map constants for the Macintosh Plus profile.
const (
	clockHz = 7_833_600.0 // 7.8336 MHz bus clock

	overlaySize  = 0x100000 // ROM-shadowed low range while the overlay is on
	romImageBase = 0x400000
	romImageSize = 0x100000

	scsiBase = 0x580000
	scsiSize = 0x10000

	sccReadBase  = 0x9FFFF8
	sccWriteBase = 0xBFFFF9
	sccSize      = 0x8

	iwmBase = 0xDFE1FF
	iwmSize = 0x2000

	viaBase = 0xEFE1FE
	viaSize = 0x2000

	ipl1 = 1 // VIA -> CPU
	ipl2 = 2 // SCC -> CPU
)

// Machine owns one instance of every subsystem, the host-facing RAM
// and ROM buffers, and the wiring between them. It is built once per
// emulator run, or reconstructed field-by-field from a checkpoint
// stream.
type Machine struct {
	log     *slog.Logger
	profile *config.Profile

	ram []byte
	rom []byte // raw ROM image file contents
	// romImage is rom tiled to fill the full mirrored ROM window; the
	// real A17 output-enable behavior (unmirrored slots read FF) is
	// not modeled, only the tiling itself.
	romImage []byte

	mem   *memmap.Map
	cpu   *cpu68k.CPU
	sched *scheduler.Scheduler

	via   *via.VIA
	scc   *scc.SCC
	iwm   *iwm.IWM
	scsi  *scsi.Controller
	rtc   *rtc.RTC
	sound *sound.Sound

	scsiImages   [8]*storage.Directory
	scsiTargets  [8]*scsi.Target
	floppyImages [2]*storage.Directory

	overlayEnabled bool
	mouseButton    bool

	Commands command.Registry
}

// scsiIRQAdapter turns scsi.Controller's level-driven IRQ callback
// into a VIA CA1 pulse. The 5380's IRQ line and the VIA's CA1 input
// are both edge-sensitive from the CPU's point of view, so only the
// asserting edge needs forwarding.
type scsiIRQAdapter struct {
	v       *via.VIA
	lastLow bool
}

func (a *scsiIRQAdapter) SetSCSIIRQ(asserted bool) {
	if asserted && !a.lastLow {
		a.v.RaiseCA1()
	}
	a.lastLow = asserted
}

// New builds a fully wired machine from a parsed profile. The ROM
// file is loaded eagerly; disk images named in the profile are opened
// against the storage engine and attached to IWM (floppy) or SCSI
// (hard disk, named via a "scsi<N>" option) drives.
func New(profile *config.Profile, log *slog.Logger) (*Machine, error) {
	if log == nil {
		log = slog.Default()
	}
	rom, err := os.ReadFile(profile.ROMPath)
	if err != nil {
		return nil, fmt.Errorf("machine: loading rom: %w", err)
	}

	m := &Machine{
		log:      log,
		profile:  profile,
		ram:      make([]byte, profile.RAMBytes),
		rom:      rom,
		romImage: tileROM(rom, romImageSize),
		mem:      memmap.New(),
	}

	m.sched = scheduler.New(clockHz, log)
	switch profile.TimingMode {
	case "accurate":
		m.sched.SetMode(scheduler.ModeHardwareAccurate)
	case "live":
		m.sched.SetMode(scheduler.ModeWallClockLive)
	default:
		m.sched.SetMode(scheduler.ModeUnbounded)
	}

	m.cpu = cpu68k.New(m.mem, log)
	m.sched.RunInstruction = m.cpu.RunInstruction

	m.via = via.New(m.sched, m.cpu, ipl1, 10, log)
	m.scc = scc.New(m.sched, m.cpu, ipl2, log)
	m.scsi = scsi.New(&scsiIRQAdapter{v: m.via}, log)
	m.iwm = iwm.New(m.sched, log)
	m.rtc = rtc.New(machineEpochSeconds())
	m.sound = sound.New(m.mem, nil)
	m.sound.MainBase = soundBufferBase(profile.RAMBytes, 0x5900)
	m.sound.AlternateBase = soundBufferBase(profile.RAMBytes, 0xD900)

	m.via.Ports.OnPortBWrite = m.onPortBWrite
	m.via.Ports.OnPortAWrite = m.onPortAWrite

	m.mapDevices()
	m.setOverlay(true)

	m.registerRTCTick()
	m.sched.OnVBL(m.onVBL)
	m.buildCommands()

	if err := m.attachImages(); err != nil {
		return nil, err
	}

	return m, nil
}

// mapDevices installs every peripheral's device.ByteDevice adapter
// into the address map at its fixed Plus location, together with the
// ROM image window at romImageBase. The low range (RAM, or ROM while
// the overlay is on) is mapped separately by setOverlay since it moves
// as the overlay switches.
func (m *Machine) mapDevices() {
	m.mem.MapROM(romImageBase, romImageSize, m.romImage)

	m.mem.MapDevice(scsiBase, scsiSize, device.ByteDevice{Read: m.scsi.ReadByte, Write: m.scsi.WriteByte})
	m.mem.MapDevice(sccReadBase, sccSize, device.ByteDevice{Read: m.scc.ReadByte, Write: m.scc.WriteByte})
	m.mem.MapDevice(sccWriteBase, sccSize, device.ByteDevice{Read: m.scc.ReadByte, Write: m.scc.WriteByte})
	m.mem.MapDevice(iwmBase, iwmSize, device.ByteDevice{Read: m.iwm.ReadByte, Write: m.iwm.WriteByte})
	m.mem.MapDevice(viaBase, viaSize, device.ByteDevice{Read: m.via.ReadByte, Write: m.via.WriteByte})
}

// setOverlay switches the low 1 MB between the ROM overlay (boot
// vectors visible at 0) and RAM, mirroring VIA Port A bit 4. RAM
// beyond the overlay window, if the installed size exceeds it, is
// always mapped as RAM.
func (m *Machine) setOverlay(enabled bool) {
	m.overlayEnabled = enabled
	window := overlaySize
	if int(m.profile.RAMBytes) < window {
		window = int(m.profile.RAMBytes)
	}
	if enabled {
		m.mem.MapROM(0, uint32(window), m.romImage[:window])
	} else {
		m.mem.MapRAM(0, uint32(window), m.ram[:window])
	}
	if len(m.ram) > window {
		m.mem.MapRAM(uint32(window), uint32(len(m.ram)-window), m.ram[window:])
	}
}

// onPortAWrite handles the two Port A bits machine-level wiring cares
// about: bit 4 (ROM overlay, active low - the overlay is on at reset
// when the bit reads 0) and bit 3 (sound/screen buffer select).
func (m *Machine) onPortAWrite(ora uint8) {
	m.setOverlay(ora&0x10 == 0)
	m.sound.SetBufferSelect(ora&0x08 != 0)
}

// onPortBWrite forwards the RTC's three bit-banged lines (bits 0-2)
// to the chip. The data-out level SetLines returns is discarded: it
// is not fed back onto Port B bit 0, whose input bits the VIA always
// reads as 1, so the guest cannot read bits back from the RTC.
func (m *Machine) onPortBWrite(orb, ddrb uint8) {
	enb := orb&0x04 != 0
	clk := orb&0x02 != 0
	data := orb&0x01 != 0
	_ = m.rtc.SetLines(enb, clk, data)
}

var evRTCTick scheduler.EventTypeID = "machine.rtcTick"

// registerRTCTick arms the scheduler's 1 Hz real-time event: every
// emulated second the RTC's counter advances and the VIA sees a CA2
// pulse, matching the real clock chip's tick line.
func (m *Machine) registerRTCTick() {
	m.sched.RegisterEventType(evRTCTick, m.onRTCTick)
	m.scheduleRTCTick()
}

func (m *Machine) scheduleRTCTick() {
	_ = m.sched.ScheduleCPUEvent(evRTCTick, m, 0, uint64(clockHz))
}

func (m *Machine) onRTCTick(int64) {
	m.rtc.Tick()
	m.via.RaiseCA2()
	m.scheduleRTCTick()
}

// soundBufferBase computes a screen/sound buffer base the way the
// ROM does: a fixed offset back from the top of installed RAM.
func soundBufferBase(ramBytes uint32, backOffset uint32) uint32 {
	if ramBytes < backOffset {
		return 0
	}
	return ramBytes - backOffset
}

// tileROM repeats a ROM image's bytes to fill a larger mirrored
// window. A zero-length source produces an all-zero window rather
// than dividing by zero, so a machine can still be built (and fail
// loudly on its first fetch) from an empty ROM file in a test.
func tileROM(rom []byte, size int) []byte {
	out := make([]byte, size)
	if len(rom) == 0 {
		return out
	}
	for i := 0; i < size; i += len(rom) {
		n := copy(out[i:], rom)
		if n == 0 {
			break
		}
	}
	return out
}

// onVBL fires once per emulated vertical blank: it pulses the VIA's
// CA1 input (the Plus wires the video VBL line there) and copies one
// sound slice out of the selected buffer.
func (m *Machine) onVBL() {
	m.via.RaiseCA1()
	m.sound.EmitVBLSlice()
}

// machineEpochSeconds seeds the RTC's Mac-epoch (1904-01-01) second
// counter from the host wall clock at construction time.
func machineEpochSeconds() uint32 {
	const macToUnixEpochSeconds = 2082844800 // 1970-01-01 minus 1904-01-01
	return uint32(time.Now().Unix() + macToUnixEpochSeconds)
}
