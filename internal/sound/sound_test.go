package sound

import "testing"

type fakeMem struct {
	words map[uint32]uint16
}

func (m *fakeMem) Read16(addr uint32) uint16 { return m.words[addr] }

func TestEmitVBLSliceReadsMainBuffer(t *testing.T) {
	mem := &fakeMem{words: make(map[uint32]uint16)}
	base := uint32(0x1000)
	for i := 0; i < SliceLen; i++ {
		mem.words[base+uint32(system6Offset)*2+uint32(i)*2] = uint16(i) << 8
	}
	var got [SliceLen]byte
	var gotVol int
	s := New(mem, func(samples [SliceLen]byte, volume int) {
		got = samples
		gotVol = volume
	})
	s.MainBase = base
	s.EmitVBLSlice()

	if gotVol != 4 {
		t.Fatalf("expected default volume 4, got %d", gotVol)
	}
	for i := 0; i < SliceLen; i++ {
		if got[i] != byte(i) {
			t.Fatalf("sample %d: want %d, got %d", i, byte(i), got[i])
		}
	}
}

func TestEmitVBLSliceSelectsAlternateBuffer(t *testing.T) {
	mem := &fakeMem{words: make(map[uint32]uint16)}
	mainBase := uint32(0x1000)
	altBase := uint32(0x2000)
	mem.words[altBase+uint32(system6Offset)*2] = 0x5500

	var got byte
	s := New(mem, func(samples [SliceLen]byte, volume int) { got = samples[0] })
	s.MainBase = mainBase
	s.AlternateBase = altBase
	s.SetBufferSelect(true)
	s.EmitVBLSlice()

	if got != 0x55 {
		t.Fatalf("expected alternate buffer sample 0x55, got %#x", got)
	}
}
