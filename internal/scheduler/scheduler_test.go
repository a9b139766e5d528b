package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestScheduler() *Scheduler {
	s := New(1_000_000, nil)
	s.RunInstruction = func() bool { return true }
	return s
}

func TestScheduleOrdering(t *testing.T) {
	s := newTestScheduler()
	var order []string

	s.RegisterEventType("a", func(int64) { order = append(order, "a") })
	s.RegisterEventType("b", func(int64) { order = append(order, "b") })
	s.RegisterEventType("c", func(int64) { order = append(order, "c") })

	assert.NoError(t, s.ScheduleCPUEvent("b", nil, 0, 20))
	assert.NoError(t, s.ScheduleCPUEvent("a", nil, 0, 4))
	assert.NoError(t, s.ScheduleCPUEvent("c", nil, 0, 40))

	s.Start()
	for i := 0; i < 20; i++ {
		s.RunSprint(100)
	}

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestCPUCyclesMonotone(t *testing.T) {
	s := newTestScheduler()
	s.Start()
	prevCycles := s.CPUCycles()
	prevInstr := s.InstructionCount()
	for i := 0; i < 50; i++ {
		s.RunSprint(40)
		c := s.CPUCycles()
		n := s.InstructionCount()
		assert.GreaterOrEqual(t, c, prevCycles)
		assert.GreaterOrEqual(t, n, prevInstr)
		prevCycles, prevInstr = c, n
	}
	assert.Zero(t, s.sprintTotal)
}

func TestModeSwitchCyclesPerInstruction(t *testing.T) {
	s := newTestScheduler()
	s.SetMode(ModeHardwareAccurate)
	s.Start()

	const n = 100
	executed := uint64(0)
	for executed < n {
		executed += s.RunSprint(12 * (n - executed))
	}
	assert.Equal(t, uint64(n*12), s.CPUCycles())

	s.SetMode(ModeUnbounded)
	executed2 := uint64(0)
	for executed2 < n {
		executed2 += s.RunSprint(4 * (n - executed2))
	}
	assert.Equal(t, uint64(n*12+n*4), s.CPUCycles())
	assert.Equal(t, uint64(2*n), s.InstructionCount())
}

func TestCancelEvents(t *testing.T) {
	s := newTestScheduler()
	fired := false
	s.RegisterEventType("x", func(int64) { fired = true })
	source := &struct{}{}
	assert.NoError(t, s.ScheduleCPUEvent("x", source, 0, 10))
	s.CancelEvents(source)
	s.Start()
	for i := 0; i < 5; i++ {
		s.RunSprint(10)
	}
	assert.False(t, fired)
}

func TestQueueSanityBound(t *testing.T) {
	s := newTestScheduler()
	s.RegisterEventType("noop", func(int64) {})
	var err error
	for i := 0; i < maxQueueLen+5; i++ {
		err = s.ScheduleCPUEvent("noop", nil, 0, uint64(i+1))
	}
	assert.Error(t, err)
}
