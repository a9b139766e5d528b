package via

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tclark/gsmac/internal/scheduler"
)

type fakeSink struct {
	raised  map[int]bool
}

func newFakeSink() *fakeSink { return &fakeSink{raised: map[int]bool{}} }
func (f *fakeSink) RaiseInterrupt(level int) { f.raised[level] = true }
func (f *fakeSink) LowerInterrupt(level int) { f.raised[level] = false }

func newTestVIA() (*VIA, *scheduler.Scheduler, *fakeSink) {
	sched := scheduler.New(1_000_000, nil)
	sink := newFakeSink()
	v := New(sched, sink, 1, 10, nil)
	return v, sched, sink
}

func TestT1WriteStartsCountdownAndFiresIFR(t *testing.T) {
	v, sched, sink := newTestVIA()
	v.WriteByte(regT1LL*0x200, 0x05) // T1L-L = 5
	v.WriteByte(regT1CH*0x200, 0x00) // T1C-H = 0, latches and starts

	assert.False(t, sink.raised[1])
	sched.RunSprint(1_000)
	assert.True(t, v.IFR&ifT1 != 0)
}

func TestIERSetClearSemantics(t *testing.T) {
	v, _, _ := newTestVIA()
	v.WriteByte(regIER*0x200, 0x80|ifT1)
	assert.Equal(t, uint8(ifT1), v.IER)
	v.WriteByte(regIER*0x200, ifT1)
	assert.Equal(t, uint8(0), v.IER)
}

func TestIRQAggregation(t *testing.T) {
	v, _, sink := newTestVIA()
	v.WriteByte(regIER*0x200, 0x80|ifCA1)
	v.RaiseCA1()
	assert.True(t, sink.raised[1])
	v.ReadByte(regORA * 0x200) // reading ORA clears CA1 IFR
	assert.False(t, sink.raised[1])
}

func TestShiftRegisterDelayedLatch(t *testing.T) {
	v, sched, _ := newTestVIA()
	v.ACR = 0x10 // shift out under T2, arbitrary non-zero mode
	v.WriteByte(regSR*0x200, 0xAA)
	assert.Equal(t, uint8(0), v.IFR&ifSR)
	sched.RunSprint(1_000)
	assert.True(t, v.IFR&ifSR != 0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	v, _, _ := newTestVIA()
	v.ORA = 0x42
	v.T1C = 0x1234
	s := v.Snapshot()
	v.ORA = 0
	v.Restore(s)
	assert.Equal(t, uint8(0x42), v.ORA)
	assert.Equal(t, uint16(0x1234), v.T1C)
}
