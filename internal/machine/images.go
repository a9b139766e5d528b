package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tclark/gsmac/internal/scsi"
	"github.com/tclark/gsmac/internal/storage"
)

const (
	defaultFloppyBlocks = 1600  // 800 KB double-sided 3.5" image
	defaultSCSIBlocks   = 40960 // 20 MB, a typical period-correct Plus hard disk
)

// attachImages opens every disk image named in the profile against
// the storage engine and attaches it to the appropriate controller:
// Disks (in order) become floppy drives fd0/fd1; "scsiN" options
// become SCSI target N (0-6).
func (m *Machine) attachImages() error {
	for i, path := range m.profile.Disks {
		if i > 1 {
			break // the Plus has two floppy drives
		}
		blocks := m.optionBlocks(fmt.Sprintf("fd%d_blocks", i), defaultFloppyBlocks)
		dir, err := storage.Open(path, blocks)
		if err != nil {
			return fmt.Errorf("machine: opening floppy image %q: %w", path, err)
		}
		m.floppyImages[i] = dir
		m.iwm.InsertDisk(i, dir, false)
	}

	for id := 0; id <= 6; id++ {
		path, ok := m.profile.Get(fmt.Sprintf("scsi%d", id))
		if !ok || strings.TrimSpace(path) == "" {
			continue
		}
		blocks := m.optionBlocks(fmt.Sprintf("scsi%d_blocks", id), defaultSCSIBlocks)
		dir, err := storage.Open(path, blocks)
		if err != nil {
			return fmt.Errorf("machine: opening scsi%d image %q: %w", id, path, err)
		}
		target := scsi.NewTarget(dir)
		m.scsiImages[id] = dir
		m.scsiTargets[id] = target
		m.scsi.Attach(id, target)
	}
	return nil
}

func (m *Machine) optionBlocks(name string, def uint32) uint32 {
	v, ok := m.profile.Get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return uint32(n)
}
