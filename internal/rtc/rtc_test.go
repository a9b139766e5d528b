package rtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clockByte(r *RTC, b uint8) {
	for i := 7; i >= 0; i-- {
		bit := (b>>uint(i))&1 != 0
		r.SetLines(false, false, bit)
		r.SetLines(false, true, bit)
	}
}

func TestTickAdvancesSecondCounter(t *testing.T) {
	r := New(0)
	for i := 0; i < 5; i++ {
		r.Tick()
	}
	assert.EqualValues(t, 5, r.Seconds)
}

func TestWriteProtectBlocksPRAMWrites(t *testing.T) {
	r := New(0)
	r.writeProtect = true
	r.SetLines(true, false, false)
	clockByte(r, 0x00) // write command to PRAM addr 0
	clockByte(r, 0xAB)
	r.SetLines(true, false, false)
	assert.Equal(t, byte(0), r.PRAM[0])
}

func TestWriteProtectToggleSequence(t *testing.T) {
	r := New(0)
	r.SetLines(true, false, false)
	clockByte(r, cmdWriteProtectOn)
	clockByte(r, 0x55)
	r.SetLines(true, false, false)
	assert.True(t, r.WriteProtected())

	r.SetLines(true, false, false)
	clockByte(r, cmdWriteProtectOn)
	clockByte(r, 0xD5)
	r.SetLines(true, false, false)
	assert.False(t, r.WriteProtected())
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := New(12345)
	r.PRAM[10] = 0x77
	s := r.Snapshot()
	r.Seconds = 0
	r.PRAM[10] = 0
	r.Restore(s)
	assert.EqualValues(t, 12345, r.Seconds)
	assert.Equal(t, byte(0x77), r.PRAM[10])
}
