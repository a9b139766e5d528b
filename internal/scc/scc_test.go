package scc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tclark/gsmac/internal/scheduler"
)

type fakeSink struct{ raised map[int]bool }

func newFakeSink() *fakeSink { return &fakeSink{raised: map[int]bool{}} }
func (f *fakeSink) RaiseInterrupt(level int) { f.raised[level] = true }
func (f *fakeSink) LowerInterrupt(level int) { f.raised[level] = false }

func newTestSCC() (*SCC, *scheduler.Scheduler, *fakeSink) {
	sched := scheduler.New(1_000_000, nil)
	sink := newFakeSink()
	return New(sched, sink, 2, nil), sched, sink
}

func enableReceiver(s *SCC, ch channelID) {
	c := s.A
	if ch == ChannelB {
		c = s.B
	}
	// select WR3, then write it with RxEnable set.
	s.WriteByte(offsetFor(ch, true), 3)
	s.WriteByte(offsetFor(ch, true), 0x01)
	_ = c
}

func offsetFor(ch channelID, control bool) uint32 {
	if ch == ChannelA {
		if control {
			return 2
		}
		return 3
	}
	if control {
		return 0
	}
	return 1
}

func TestSDLCFrameDeliveredByteByByte(t *testing.T) {
	s, sched, _ := newTestSCC()
	enableReceiver(s, ChannelA)
	s.SDLCSend(ChannelA, []byte{0xAA, 0xBB, 0xCC})

	sched.RunSprint(10_000)
	assert.True(t, s.A.computeRR0()&rr0RxAvail != 0)
	got := s.ReadByte(offsetFor(ChannelA, false))
	assert.Equal(t, uint8(0xAA), got)
}

func TestFrameQueueOverflowCounted(t *testing.T) {
	s, _, _ := newTestSCC()
	for i := 0; i < frameQueueDepth+2; i++ {
		s.SDLCSend(ChannelB, []byte{byte(i)})
	}
	assert.Equal(t, 2, s.B.overflow)
}

func TestMouseStepRaisesDCDInterrupt(t *testing.T) {
	s, _, sink := newTestSCC()
	s.WriteByte(offsetFor(ChannelA, true), 15)
	s.WriteByte(offsetFor(ChannelA, true), 0x01)
	s.MouseStep(ChannelA, true)
	assert.True(t, sink.raised[2])
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, _, _ := newTestSCC()
	s.SDLCSend(ChannelA, []byte{1, 2, 3})
	snap := s.Snapshot()
	s.SDLCSend(ChannelA, []byte{9, 9})
	s.Restore(snap)
	assert.Equal(t, 1, len(s.A.frames))
}
