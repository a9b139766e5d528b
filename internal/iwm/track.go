package iwm

// Sector header/data framing bytes, as documented for the Sony 3.5"
// GCR format.
var (
	headerPrologue = []byte{0xD5, 0xAA, 0x96}
	dataPrologue   = []byte{0xD5, 0xAA, 0xAD}
	epilogue       = []byte{0xDE, 0xAA}
)

// zoneSectorCounts gives sectors-per-track outer-to-inner across the
// Sony drive's five speed zones (16 tracks each, 80 tracks total).
var zoneSectorCounts = [5]int{12, 11, 10, 9, 8}

// SectorsForTrack returns how many sectors a given physical track
// (0-79) carries, per the zoned constant-linear-velocity layout.
func SectorsForTrack(track int) int {
	zone := track / 16
	if zone > 4 {
		zone = 4
	}
	return zoneSectorCounts[zone]
}

// Interleave returns the zone-specific physical-to-logical sector
// order (2:1 interleave is the standard Sony scheme across all
// zones): physical slot i on the track holds logical sector
// Interleave(n)[i].
func Interleave(n int) []int {
	order := make([]int, n)
	slot := 0
	for pass := 0; pass < 2; pass++ {
		for logical := pass; logical < n; logical += 2 {
			order[slot] = logical
			slot++
		}
	}
	return order
}

// headerChecksum XORs the four raw (not yet GCR-encoded) header values
// into the header-field checksum byte. BuildTrack writes it; ScanTrack
// does not verify it.
func headerChecksum(track, sector, side, format byte) byte {
	return track ^ sector ^ side ^ format
}

// sectorHeader is the decoded form of one sector's 4-byte header
// field (track[5:0], sector, side+track[6:7], format byte).
type sectorHeader struct {
	Track, Sector, Side, Format byte
}

// BuildTrack synthesizes one physical track's raw encoded bitstream
// from n logical sectors (524-byte payloads), in the zone's
// 2:1-interleaved physical order, each framed with sync/prologue/
// header/epilogue and data/prologue/payload/checksum/epilogue fields.
func BuildTrack(track, side int, sectors [][]byte) []byte {
	n := len(sectors)
	order := Interleave(n)
	var out []byte
	for _, logical := range order {
		out = appendSync(out, 6)
		out = append(out, headerPrologue...)
		hdr := sectorHeader{
			Track:  byte(track & 0x3F),
			Sector: byte(logical),
			Side:   byte(side)<<5 | byte(track>>6),
			Format: 0x22,
		}
		out = append(out, hdr.Track, hdr.Sector, hdr.Side, hdr.Format)
		out = append(out, headerChecksum(hdr.Track, hdr.Sector, hdr.Side, hdr.Format))
		out = append(out, epilogue...)
		out = append(out, 0) // off-byte
		out = appendSync(out, 2)
		out = append(out, dataPrologue...)
		out = append(out, byte(logical))
		out = append(out, EncodeSector(sectors[logical])...)
		out = append(out, epilogue...)
		out = append(out, 0)
	}
	return out
}

func appendSync(buf []byte, n int) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, 0xFF)
	}
	return buf
}

// ScanTrack recovers logical sectors from a raw encoded track by
// locating `D5 AA 96` header prologues, matching them against the
// expected on-wire sector length, and decoding the payload that
// follows each `D5 AA AD` data prologue. Sectors are returned indexed
// by logical sector number.
func ScanTrack(raw []byte, n int) map[int][]byte {
	out := make(map[int][]byte)
	i := 0
	for i+3 <= len(raw) {
		if !matchAt(raw, i, headerPrologue) {
			i++
			continue
		}
		hdrStart := i + 3
		if hdrStart+5 > len(raw) {
			break
		}
		sector := int(raw[hdrStart+1])
		i = hdrStart + 5
		// Skip epilogue + off-byte + sync to the data field.
		for i < len(raw) && !matchAt(raw, i, dataPrologue) {
			i++
		}
		if i+3+1+EncodedSectorLen > len(raw) {
			break
		}
		dataStart := i + 3 + 1 // prologue + sector-number byte
		encoded := raw[dataStart : dataStart+EncodedSectorLen]
		if payload, ok := DecodeSector(encoded); ok && sector < n {
			out[sector] = payload
		}
		i = dataStart + EncodedSectorLen
	}
	return out
}

func matchAt(buf []byte, i int, pattern []byte) bool {
	if i+len(pattern) > len(buf) {
		return false
	}
	for j, b := range pattern {
		if buf[i+j] != b {
			return false
		}
	}
	return true
}
