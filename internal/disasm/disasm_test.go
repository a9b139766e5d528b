package disasm

import (
	"strings"
	"testing"
)

type fakeMem struct {
	words map[uint32]uint16
}

func (m *fakeMem) Read16(addr uint32) uint16 { return m.words[addr] }

func newFakeMem(words ...uint16) *fakeMem {
	m := &fakeMem{words: make(map[uint32]uint16)}
	for i, w := range words {
		m.words[uint32(i*2)] = w
	}
	return m
}

func TestDisassembleNOP(t *testing.T) {
	mem := newFakeMem(0x4E71)
	ins := Disassemble(mem, 0, 1)
	if ins[0].Text != "NOP" {
		t.Fatalf("expected NOP, got %q", ins[0].Text)
	}
	if ins[0].Len != 2 {
		t.Fatalf("expected length 2, got %d", ins[0].Len)
	}
}

func TestDisassembleMoveq(t *testing.T) {
	mem := newFakeMem(0x7203) // MOVEQ #3,D1
	ins := Disassemble(mem, 0, 1)
	if !strings.Contains(ins[0].Text, "MOVEQ") || !strings.Contains(ins[0].Text, "D1") {
		t.Fatalf("got %q", ins[0].Text)
	}
}

func TestDisassembleMoveWordDnToDn(t *testing.T) {
	mem := newFakeMem(0x3001) // MOVE.W D1,D0
	ins := Disassemble(mem, 0, 1)
	if ins[0].Text != "MOVE.W D1,D0" {
		t.Fatalf("got %q", ins[0].Text)
	}
}

func TestDisassembleBraConsumesDisplacement(t *testing.T) {
	mem := newFakeMem(0x6000, 0x0010) // BRA with 16-bit displacement
	ins := Disassemble(mem, 0, 1)
	if ins[0].Len != 4 {
		t.Fatalf("expected 4-byte BRA, got %d", ins[0].Len)
	}
	if !strings.HasPrefix(ins[0].Text, "BRA") {
		t.Fatalf("got %q", ins[0].Text)
	}
}

func TestDisassembleUnknownOpcodeFallsBackToDCW(t *testing.T) {
	mem := newFakeMem(0xA000) // line A is unimplemented
	ins := Disassemble(mem, 0, 1)
	if !strings.HasPrefix(ins[0].Text, "DC.W") {
		t.Fatalf("got %q", ins[0].Text)
	}
}

func TestDisassembleSequenceAdvancesAddress(t *testing.T) {
	mem := newFakeMem(0x4E71, 0x7001, 0x4E75)
	ins := Disassemble(mem, 0, 3)
	if ins[1].Addr != 2 || ins[2].Addr != 4 {
		t.Fatalf("unexpected addresses: %v %v", ins[1].Addr, ins[2].Addr)
	}
}
