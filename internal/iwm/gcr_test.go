package iwm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCRSectorRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		payload := make([]byte, SectorPayloadLen)
		r.Read(payload)
		encoded := EncodeSector(payload)
		assert.Equal(t, EncodedSectorLen, len(encoded))
		for _, b := range encoded {
			assert.True(t, b&0x80 != 0, "every GCR byte must have the high bit set")
		}
		decoded, ok := DecodeSector(encoded)
		assert.True(t, ok)
		assert.Equal(t, payload, decoded)
	}
}

func TestGCRDetectsCorruption(t *testing.T) {
	payload := make([]byte, SectorPayloadLen)
	for i := range payload {
		payload[i] = byte(i)
	}
	encoded := EncodeSector(payload)
	encoded[0] = 0x00 // not a valid on-wire byte
	_, ok := DecodeSector(encoded)
	assert.False(t, ok)
}

func TestSectorLayoutRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	n := 12
	sectors := make([][]byte, n)
	for i := range sectors {
		sectors[i] = make([]byte, SectorPayloadLen)
		r.Read(sectors[i])
	}
	track := BuildTrack(5, 0, sectors)
	recovered := ScanTrack(track, n)
	assert.Equal(t, n, len(recovered))
	for i := 0; i < n; i++ {
		assert.Equal(t, sectors[i], recovered[i])
	}
}

func TestInterleaveIsTwoToOne(t *testing.T) {
	order := Interleave(12)
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 1, 3, 5, 7, 9, 11}, order)
}
