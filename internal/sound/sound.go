/*
   gsmac sound: per-VBL PWM sample slice.

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

// Package sound extracts the 370-byte 8-bit PWM sample slice System 6
// writes into a fixed RAM region once per VBL and forwards it to the
// host frontend. It holds a non-owning reference to the memory map
// (this tree's ownership convention: cross-subsystem access is a
// back-reference installed at wiring time, never a struct embedding)
// so it can sample host RAM without the memory map depending on it.
package sound

// SliceLen is the number of 8-bit PWM samples emitted per VBL.
const SliceLen = 370

// system6Offset is the word offset into the selected sound buffer
// where the System 6 layout's PWM bytes begin.
const system6Offset = 90

// MemoryReader is the subset of memmap.Map the sound slice needs.
type MemoryReader interface {
	Read16(addr uint32) uint16
}

// Sink is the host callback the extracted slice is handed to, with no
// retained reference afterward: play_8bit_pwm(bytes, len=370, volume).
type Sink func(samples [SliceLen]byte, volume int)

// Sound owns the volume mixer state (defaulting to 4, matching the
// stock ROM's pre-configuration audibility default) and the buffer
// base addresses for main/alternate selection.
type Sound struct {
	mem MemoryReader
	out Sink

	Volume int

	MainBase, AlternateBase uint32
	useAlternate            bool
}

// New creates the sound slice extractor, wired to mem for sampling
// and out for delivering the per-VBL buffer to the host.
func New(mem MemoryReader, out Sink) *Sound {
	return &Sound{mem: mem, out: out, Volume: 4}
}

// SetBufferSelect mirrors VIA Port A bit 3 (sound buffer select):
// true selects the alternate screen/sound buffer.
func (s *Sound) SetBufferSelect(alternate bool) {
	s.useAlternate = alternate
}

// SetSink replaces the host playback callback, used once the front
// end has an audio device ready after construction.
func (s *Sound) SetSink(out Sink) {
	s.out = out
}

// EmitVBLSlice copies SliceLen bytes from the high byte of the
// selected buffer's PWM words (starting system6Offset words in) and
// forwards them to the host sink. Called once per VBL by the
// orchestration layer's VBL callback.
func (s *Sound) EmitVBLSlice() {
	base := s.MainBase
	if s.useAlternate {
		base = s.AlternateBase
	}
	var samples [SliceLen]byte
	addr := base + uint32(system6Offset)*2
	for i := 0; i < SliceLen; i++ {
		word := s.mem.Read16(addr)
		samples[i] = uint8(word >> 8)
		addr += 2
	}
	if s.out != nil {
		s.out(samples, s.Volume)
	}
}
