package hexutil

import (
	"strings"
	"testing"
)

func TestFormatLong(t *testing.T) {
	var b strings.Builder
	FormatLong(&b, []uint32{0xDEADBEEF})
	if b.String() != "DEADBEEF " {
		t.Fatalf("got %q", b.String())
	}
}

func TestFormatBytes(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0x01, 0xFF})
	if b.String() != "01 FF " {
		t.Fatalf("got %q", b.String())
	}
}

func TestDumpLineShowsAsciiGutter(t *testing.T) {
	line := DumpLine(0x1000, []byte("Hi\x00\x01"))
	if !strings.Contains(line, "|Hi..|") {
		t.Fatalf("expected ascii gutter with dots for non-printables, got %q", line)
	}
	if !strings.HasPrefix(line, "00001000 ") {
		t.Fatalf("expected address prefix, got %q", line)
	}
}

func TestDumpProducesOneLinePerSixteenBytes(t *testing.T) {
	data := make([]byte, 32)
	out := Dump(0, data)
	if len(strings.Split(out, "\n")) != 2 {
		t.Fatalf("expected 2 lines for 32 bytes, got:\n%s", out)
	}
}
