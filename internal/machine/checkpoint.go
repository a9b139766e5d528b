package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/tclark/gsmac/internal/checkpoint"
	"github.com/tclark/gsmac/internal/cpu68k"
	"github.com/tclark/gsmac/internal/iwm"
	"github.com/tclark/gsmac/internal/rtc"
	"github.com/tclark/gsmac/internal/scc"
	"github.com/tclark/gsmac/internal/scheduler"
	"github.com/tclark/gsmac/internal/scsi"
	"github.com/tclark/gsmac/internal/sound"
	"github.com/tclark/gsmac/internal/via"
)

type (
	rtcState    = rtc.State
	sccState    = scc.State
	soundState  = sound.State
	viaState    = via.State
	floppyState = iwm.State
)

// scsiCombined bundles the controller's own register state with every
// attached target's protocol-visible latch state (sense data, unit
// attention, ready) - the target package deliberately keeps those
// separate since the controller has no notion of which image path a
// target came from.
type scsiCombined struct {
	Controller scsi.State
	Targets    [8]*scsi.TargetState
}

func (m *Machine) snapshotSCSI() scsiCombined {
	var c scsiCombined
	c.Controller = m.scsi.Snapshot()
	// gob cannot encode nil array elements, so an empty slot carries a
	// zero state instead.
	for i, t := range m.scsiTargets {
		s := scsi.TargetState{}
		if t != nil {
			s = t.Snapshot()
		}
		c.Targets[i] = &s
	}
	return c
}

func (m *Machine) restoreSCSI(st scsiCombined) {
	m.scsi.Restore(st.Controller)
	for i, t := range m.scsiTargets {
		if t != nil && st.Targets[i] != nil {
			t.Restore(*st.Targets[i])
		}
	}
}

// gobEncode and gobDecode turn the plain, fully-exported-field State
// structs the device packages expose via Snapshot()/Restore() into
// checkpoint frame payloads. Only cpu68k.State carries a hand-rolled
// MarshalBinary/UnmarshalBinary (the CPU's registers are the one
// payload worth a fixed-width wire format); every other subsystem's
// state is a small, rarely-changed struct where the stdlib's own
// binary-safe encoder is the better fit than hand-writing an encoder
// for each one - see DESIGN.md for the fuller justification.
func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("machine: encoding checkpoint payload: %w", err)
	}
	return buf.Bytes(), nil
}

func gobDecode(payload []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return fmt.Errorf("machine: decoding checkpoint payload: %w", err)
	}
	return nil
}

// imageBlocks is the consolidated-checkpoint payload for one attached
// disk image: every logical block, keyed by the drive/target slot it
// was attached at.
type imageBlocks struct {
	Floppy  bool
	Slot    int
	Blocks  [][512]byte
}

// subsystems builds the fixed RAM/CPU/scheduler/RTC/SCC/sound/VIA/
// mouse/SCSI/keyboard/floppy/images ordering the checkpoint stream
// format requires.
func (m *Machine) subsystems(kind checkpoint.Kind) []checkpoint.Subsystem {
	return []checkpoint.Subsystem{
		{Name: "RAM", Save: func() ([]byte, error) { return append([]byte(nil), m.ram...), nil },
			Load: func(p []byte) error { copy(m.ram, p); return nil }},

		{Name: "CPU", Save: func() ([]byte, error) { return m.cpu.Snapshot().MarshalBinary() },
			Load: func(p []byte) error {
				var st cpu68k.State
				if err := st.UnmarshalBinary(p); err != nil {
					return err
				}
				m.cpu.Restore(st)
				return nil
			}},

		{Name: "scheduler", Save: func() ([]byte, error) { return gobEncode(m.sched.Snapshot()) },
			Load: func(p []byte) error {
				var st scheduler.State
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.sched.Restore(st)
				return nil
			}},

		{Name: "RTC", Save: func() ([]byte, error) { return gobEncode(m.rtc.Snapshot()) },
			Load: func(p []byte) error {
				var st rtcState
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.rtc.Restore(st)
				return nil
			}},

		{Name: "SCC", Save: func() ([]byte, error) { return gobEncode(m.scc.Snapshot()) },
			Load: func(p []byte) error {
				var st sccState
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.scc.Restore(st)
				return nil
			}},

		{Name: "sound", Save: func() ([]byte, error) { return gobEncode(m.sound.Snapshot()) },
			Load: func(p []byte) error {
				var st soundState
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.sound.Restore(st)
				return nil
			}},

		{Name: "VIA", Save: func() ([]byte, error) { return gobEncode(m.via.Snapshot()) },
			Load: func(p []byte) error {
				var st viaState
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.via.Restore(st)
				return nil
			}},

		{Name: "mouse", Save: func() ([]byte, error) { return gobEncode(m.mouseButton) },
			Load: func(p []byte) error { return gobDecode(p, &m.mouseButton) }},

		{Name: "SCSI", Save: func() ([]byte, error) { return gobEncode(m.snapshotSCSI()) },
			Load: func(p []byte) error {
				var st scsiCombined
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.restoreSCSI(st)
				return nil
			}},

		{Name: "keyboard", Save: func() ([]byte, error) { return nil, nil },
			Load: func(p []byte) error { return nil }},

		{Name: "floppy", Save: func() ([]byte, error) { return gobEncode(m.iwm.Snapshot()) },
			Load: func(p []byte) error {
				var st floppyState
				if err := gobDecode(p, &st); err != nil {
					return err
				}
				m.iwm.Restore(st)
				return nil
			}},

		{Name: "images", Save: func() ([]byte, error) { return m.saveImages(kind) },
			Load: func(p []byte) error { return m.loadImages(kind, p) }},
	}
}

// Save writes a checkpoint of kind (quick or consolidated) to w.
func (m *Machine) Save(w io.Writer, kind checkpoint.Kind) error {
	cw := checkpoint.NewWriter(w)
	return checkpoint.Setup(cw, m.subsystems(kind))
}

// Load restores a checkpoint of the given kind from r into this
// already-constructed machine (built from the same profile, so RAM
// size and attached image paths already match).
func (m *Machine) Load(r io.Reader, kind checkpoint.Kind) error {
	cr := checkpoint.NewReader(r)
	if err := checkpoint.SetupFromCheckpoint(cr, m.subsystems(kind)); err != nil {
		return err
	}
	// The scheduler restore empties the event queue; re-arm the
	// machine's own periodic events.
	m.sched.OnVBL(m.onVBL)
	m.scheduleRTCTick()
	return nil
}

func (m *Machine) saveImages(kind checkpoint.Kind) ([]byte, error) {
	if kind != checkpoint.KindConsolidated {
		return nil, nil
	}
	var all []imageBlocks
	for i, dir := range m.floppyImages {
		if dir == nil {
			continue
		}
		blocks, err := dumpDirectory(dir)
		if err != nil {
			return nil, err
		}
		all = append(all, imageBlocks{Floppy: true, Slot: i, Blocks: blocks})
	}
	for id, dir := range m.scsiImages {
		if dir == nil {
			continue
		}
		blocks, err := dumpDirectory(dir)
		if err != nil {
			return nil, err
		}
		all = append(all, imageBlocks{Floppy: false, Slot: id, Blocks: blocks})
	}
	return gobEncode(all)
}

func (m *Machine) loadImages(kind checkpoint.Kind, payload []byte) error {
	if kind != checkpoint.KindConsolidated || len(payload) == 0 {
		return nil
	}
	var all []imageBlocks
	if err := gobDecode(payload, &all); err != nil {
		return err
	}
	for _, img := range all {
		if img.Floppy {
			if dir := m.floppyImages[img.Slot]; dir != nil {
				if err := writeAllBlocks(dir, img.Blocks); err != nil {
					return err
				}
			}
		} else if dir := m.scsiImages[img.Slot]; dir != nil {
			if err := writeAllBlocks(dir, img.Blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAllBlocks(dir interface {
	WriteBlock(lba uint32, data [512]byte) error
}, blocks [][512]byte) error {
	for lba, block := range blocks {
		if err := dir.WriteBlock(uint32(lba), block); err != nil {
			return err
		}
	}
	return nil
}

type blockWriter interface {
	ReadBlock(lba uint32) ([512]byte, error)
	BlockCount() uint32
}

func dumpDirectory(dir blockWriter) ([][512]byte, error) {
	count := dir.BlockCount()
	blocks := make([][512]byte, count)
	for lba := uint32(0); lba < count; lba++ {
		b, err := dir.ReadBlock(lba)
		if err != nil {
			return nil, err
		}
		blocks[lba] = b
	}
	return blocks, nil
}
