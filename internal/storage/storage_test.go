package storage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteThenReadMatches(t *testing.T) {
	dir, err := Open(t.TempDir()+"/disk.img", 64)
	assert.NoError(t, err)

	var block [BlockSize]byte
	for i := range block {
		block[i] = 0x42
	}
	assert.NoError(t, dir.WriteBlock(5, block))

	got, err := dir.ReadBlock(5)
	assert.NoError(t, err)
	assert.Equal(t, block, got)

	zero, err := dir.ReadBlock(6)
	assert.NoError(t, err)
	assert.Equal(t, [BlockSize]byte{}, zero)
}

func TestRandomWritesSurviveTicks(t *testing.T) {
	const blockCount = 64
	dir, err := Open(t.TempDir()+"/disk.img", blockCount)
	assert.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	want := map[uint32][BlockSize]byte{}
	for i := 0; i < 200; i++ {
		lba := uint32(r.Intn(blockCount))
		var block [BlockSize]byte
		r.Read(block[:])
		assert.NoError(t, dir.WriteBlock(lba, block))
		want[lba] = block
		if i%10 == 0 {
			assert.NoError(t, dir.Tick(4))
		}
	}
	for lba, block := range want {
		got, err := dir.ReadBlock(lba)
		assert.NoError(t, err)
		assert.Equal(t, block, got)
	}
}

func TestRollbackRestoresPreimage(t *testing.T) {
	dir, err := Open(t.TempDir()+"/disk.img", 8)
	assert.NoError(t, err)

	var original [BlockSize]byte
	for i := range original {
		original[i] = 1
	}
	assert.NoError(t, dir.WriteBlock(2, original))
	assert.NoError(t, dir.CommitCheckpoint())

	var modified [BlockSize]byte
	for i := range modified {
		modified[i] = 2
	}
	assert.NoError(t, dir.WriteBlock(2, modified))

	assert.NoError(t, dir.ApplyRollback())
	got, err := dir.ReadBlock(2)
	assert.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestGSStorageCacheRedirectsRoot(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("GS_STORAGE_CACHE", cache)
	root, err := RootFor("/images/system.img")
	assert.NoError(t, err)
	assert.Contains(t, root, cache)
	assert.Contains(t, root, "system.img.blocks")
}
