package iwm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tclark/gsmac/internal/scheduler"
)

type memBlocks struct {
	blocks map[uint32][512]byte
	count  uint32
}

func newMemBlocks(count uint32) *memBlocks {
	return &memBlocks{blocks: map[uint32][512]byte{}, count: count}
}
func (m *memBlocks) ReadBlock(lba uint32) ([512]byte, error) { return m.blocks[lba], nil }
func (m *memBlocks) WriteBlock(lba uint32, data [512]byte) error {
	m.blocks[lba] = data
	return nil
}
func (m *memBlocks) BlockCount() uint32 { return m.count }

func TestStepSoftswitchAdvancesTrack(t *testing.T) {
	sched := scheduler.New(1_000_000, nil)
	m := New(sched, nil)
	m.InsertDisk(0, newMemBlocks(1600), false)

	// CA0 asserted (step), CA1 asserted (direction forward), CA2 clear,
	// then LSTRB pulse.
	m.applySoftswitch(1 * 0x200) // sets CA0; all three lines are set explicitly below
	m.CA0, m.CA1, m.CA2 = true, true, false
	m.onStrobe()
	assert.Equal(t, 1, m.Drives[0].Track)
}

func TestMotorOnSpinsUpAfterEvent(t *testing.T) {
	sched := scheduler.New(1_000_000, nil)
	m := New(sched, nil)
	m.CA0, m.CA1, m.CA2 = false, true, true
	m.onStrobe()
	assert.False(t, m.Drives[0].MotorOn)
	sched.RunSprint(1_000_000)
	assert.True(t, m.Drives[0].MotorOn)
}

func TestSnapshotRoundTrip(t *testing.T) {
	sched := scheduler.New(1_000_000, nil)
	m := New(sched, nil)
	m.InsertDisk(1, newMemBlocks(100), true)
	m.Drives[1].Track = 40
	s := m.Snapshot()
	m.Drives[1].Track = 0
	m.Restore(s)
	assert.Equal(t, 40, m.Drives[1].Track)
	assert.True(t, m.Drives[1].WriteProtect)
}
