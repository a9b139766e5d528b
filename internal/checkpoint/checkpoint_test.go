package checkpoint

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

// assertDeepEqual renders both sides with go-spew on mismatch so a
// checkpoint round-trip failure shows which field actually drifted,
// instead of testify's default single-line diff, which is unreadable
// once a restored struct has more than a couple of fields.
func assertDeepEqual(t *testing.T, want, got any) {
	t.Helper()
	if !assert.ObjectsAreEqual(want, got) {
		t.Fatalf("checkpoint round-trip mismatch:\nwant:\n%s\ngot:\n%s", spew.Sdump(want), spew.Sdump(got))
	}
}

func TestRLERoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	cases := [][]byte{
		{},
		bytes.Repeat([]byte{0x42}, 10),
		bytes.Repeat([]byte{escByte}, 3),
		append(bytes.Repeat([]byte{escByte}, 1), 1, 2, 3),
	}
	random := make([]byte, 500)
	r.Read(random)
	cases = append(cases, random)

	for i, c := range cases {
		encoded := RLEEncode(c)
		decoded := RLEDecode(encoded)
		assertDeepEqual(t, c, decoded)
		_ = fmt.Sprintf("case %d", i)
	}
}

func TestV2FrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteFrame("internal/via/serialize.go", 10, []byte{1, 2, 3})
	big := bytes.Repeat([]byte{0xAA}, 200)
	w.WriteFrame("internal/cpu68k/serialize.go", 20, big)
	assert.False(t, w.HasError())

	r := NewReader(&buf)
	f1, ok := r.ReadFrame()
	assert.True(t, ok)
	assert.Equal(t, "internal/via/serialize.go", f1.SourceFile)
	assert.Equal(t, []byte{1, 2, 3}, f1.Payload)

	f2, ok := r.ReadFrame()
	assert.True(t, ok)
	assertDeepEqual(t, big, f2.Payload)

	_, ok = r.ReadFrame()
	assert.False(t, ok)
	assert.False(t, r.HasError())
}

func TestV3QuickRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := bytes.Repeat([]byte{0x00}, 1000)
	assert.NoError(t, WriteQuick(&buf, payload))
	assert.Equal(t, MagicV3, string(buf.Bytes()[:8]))

	got, err := ReadQuick(&buf)
	assert.NoError(t, err)
	assertDeepEqual(t, payload, got)
}

func TestReaderStickyOnBadMagic(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("nonsense")))
	_, ok := r.ReadFrame()
	assert.False(t, ok)
	assert.True(t, r.HasError())
	_, ok = r.ReadFrame()
	assert.False(t, ok)
}

func TestSetupOrdering(t *testing.T) {
	var buf bytes.Buffer
	subsystems := []Subsystem{
		{Name: "ram", Save: func() ([]byte, error) { return []byte{1}, nil }},
		{Name: "cpu", Save: func() ([]byte, error) { return []byte{2}, nil }},
	}
	w := NewWriter(&buf)
	assert.NoError(t, Setup(w, subsystems))

	var gotOrder []string
	loadSubsystems := []Subsystem{
		{Name: "ram", Load: func(b []byte) error { gotOrder = append(gotOrder, "ram"); return nil }},
		{Name: "cpu", Load: func(b []byte) error { gotOrder = append(gotOrder, "cpu"); return nil }},
	}
	r := NewReader(&buf)
	assert.NoError(t, SetupFromCheckpoint(r, loadSubsystems))
	assert.Equal(t, []string{"ram", "cpu"}, gotOrder)
}

func TestSetupFromCheckpointDetectsMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.NoError(t, Setup(w, []Subsystem{
		{Name: "ram", Save: func() ([]byte, error) { return []byte{1}, nil }},
	}))
	r := NewReader(&buf)
	err := SetupFromCheckpoint(r, []Subsystem{
		{Name: "cpu", Load: func(b []byte) error { return nil }},
	})
	assert.Error(t, err)
}
