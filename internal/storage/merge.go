package storage

import (
	"os"
	"path/filepath"
)

// Tick looks for 16 consecutive level-L entries sharing an aligned
// parent base and no existing parent, and consolidates them into one
// level-(L+1) file, up to maxMerges per call. Because each merge ends
// with an atomic rename followed by deleting the now-redundant
// children, a crash mid-merge either leaves the parent absent
// (children still win on read, since level L is probed before L+1)
// or leaves both present (the children still win, since level L is
// probed first; safe because the parent's bytes came from exactly
// those children).
func (d *Directory) Tick(maxMerges int) error {
	done := 0
	for level := 0; level <= d.maxLevel && done < maxMerges; level++ {
		span := levelSpan(level)
		parentSpan := span * 16
		groups := map[uint32][]levelEntry{}
		for _, e := range d.index[level] {
			parentBase := e.BaseLBA - (e.BaseLBA % parentSpan)
			groups[parentBase] = append(groups[parentBase], e)
		}
		for parentBase, members := range groups {
			if done >= maxMerges {
				break
			}
			if len(members) != 16 || d.hasParent(level+1, parentBase) {
				continue
			}
			if err := d.mergeGroup(level, parentBase, members); err != nil {
				return err
			}
			done++
		}
	}
	return nil
}

func (d *Directory) hasParent(level int, base uint32) bool {
	for _, e := range d.index[level] {
		if e.BaseLBA == base {
			return true
		}
	}
	return false
}

func (d *Directory) mergeGroup(level int, parentBase uint32, members []levelEntry) error {
	span := levelSpan(level)
	count := 16 * span
	buf := make([]byte, 0, count*BlockSize)
	for i := uint32(0); i < count; i++ {
		block, err := d.ReadBlock(parentBase + i)
		if err != nil {
			return err
		}
		buf = append(buf, block[:]...)
	}
	parentPath := filepath.Join(d.dir, datName(parentBase, level+1))
	if err := writeAtomic(parentPath, buf); err != nil {
		return err
	}
	d.insertIndex(level+1, parentBase, parentPath)
	for _, m := range members {
		os.Remove(m.path)
	}
	d.removeFromIndex(level, members)
	return nil
}

func (d *Directory) removeFromIndex(level int, members []levelEntry) {
	remove := map[uint32]bool{}
	for _, m := range members {
		remove[m.BaseLBA] = true
	}
	kept := d.index[level][:0]
	for _, e := range d.index[level] {
		if !remove[e.BaseLBA] {
			kept = append(kept, e)
		}
	}
	d.index[level] = kept
}

// CommitCheckpoint deletes every pending rollback pre-image: the
// current on-disk state becomes the new baseline subsequent writes
// preserve pre-images against.
func (d *Directory) CommitCheckpoint() error {
	entries, err := os.ReadDir(d.rollbackDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(d.rollbackDir, e.Name())); err != nil {
			return err
		}
	}
	d.hasPreimage = map[uint32]bool{}
	return nil
}

// ApplyRollback restores every block with a staged pre-image back to
// its pre-write value, simulating a restart without a checkpoint
// commit, then clears the overlay.
func (d *Directory) ApplyRollback() error {
	entries, err := os.ReadDir(d.rollbackDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		lba, ok := parsePreName(e.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.rollbackDir, e.Name()))
		if err != nil {
			return err
		}
		var block [BlockSize]byte
		copy(block[:], data)
		path := filepath.Join(d.dir, datName(lba, 0))
		if err := writeAtomic(path, block[:]); err != nil {
			return err
		}
		d.insertIndex(0, lba, path)
	}
	return d.CommitCheckpoint()
}

// SaveState streams every block in order to cb, for a consolidated
// checkpoint that must be self-contained.
func (d *Directory) SaveState(cb func(lba uint32, data [BlockSize]byte) error) error {
	for lba := uint32(0); lba < d.blockCount; lba++ {
		block, err := d.ReadBlock(lba)
		if err != nil {
			return err
		}
		if err := cb(lba, block); err != nil {
			return err
		}
	}
	return nil
}

// LoadState deletes all existing `.dat` files and rebuilds the
// directory one block at a time from next, writing level-0 files;
// a subsequent Tick call performs the re-consolidation into larger
// aligned levels.
func (d *Directory) LoadState(next func() (uint32, [BlockSize]byte, bool, error)) error {
	for level, entries := range d.index {
		for _, e := range entries {
			os.Remove(e.path)
		}
		delete(d.index, level)
	}
	d.index = map[int][]levelEntry{}
	for {
		lba, data, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		path := filepath.Join(d.dir, datName(lba, 0))
		if err := writeAtomic(path, data[:]); err != nil {
			return err
		}
		d.insertIndex(0, lba, path)
	}
	return nil
}
