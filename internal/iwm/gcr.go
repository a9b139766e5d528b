/*
   gsmac iwm: GCR 6-and-2 codec.

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

// Package iwm models the Integrated Woz Machine, the Sony 3.5" drive
// state machine it drives, and the GCR 6-and-2 encoding used on disk.
// The softswitch/register dispatch is grounded on this tree's
// device-handler convention (internal/device); track geometry and
// sector layout follow the documented zoned-CLV format of the Sony
// 400/800K mechanism.
package iwm

// gcrTable maps a 6-bit nibble (0-63) to its on-wire byte. Every
// table entry has the high bit set and no more than two consecutive
// zero bits, the self-clocking constraint the drive's PLL depends on.
var gcrTable = [64]byte{
	0x96, 0x97, 0x9A, 0x9B, 0x9D, 0x9E, 0x9F, 0xA6,
	0xA7, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF, 0xB2, 0xB3,
	0xB4, 0xB5, 0xB6, 0xB7, 0xB9, 0xBA, 0xBB, 0xBC,
	0xBD, 0xBE, 0xBF, 0xCB, 0xCD, 0xCE, 0xCF, 0xD3,
	0xD6, 0xD7, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE,
	0xDF, 0xE5, 0xE6, 0xE7, 0xE9, 0xEA, 0xEB, 0xEC,
	0xED, 0xEE, 0xEF, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6,
	0xF7, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF,
}

var gcrInverse [256]int8

func init() {
	for i := range gcrInverse {
		gcrInverse[i] = -1
	}
	for nibble, wire := range gcrTable {
		gcrInverse[wire] = int8(nibble)
	}
}

// encodeGroup GCR-encodes three 8-bit bytes into four 6-bit nibbles
// (as on-wire bytes): the high six bits of each byte, then one nibble
// packing the low two bits of all three. The bytes are split as they
// are; no checksum accumulation or XOR masking is applied to them here
// (the sector checksum is computed separately by checksum).
func encodeGroup(b0, b1, b2 byte) [4]byte {
	n0 := b0 >> 2
	n1 := b1 >> 2
	n2 := b2 >> 2
	n3 := ((b0 & 0x3) << 4) | ((b1 & 0x3) << 2) | (b2 & 0x3)
	return [4]byte{gcrTable[n0&0x3F], gcrTable[n1&0x3F], gcrTable[n2&0x3F], gcrTable[n3&0x3F]}
}

func decodeGroup(w0, w1, w2, w3 byte) (b0, b1, b2 byte, ok bool) {
	n0, n1, n2, n3 := gcrInverse[w0], gcrInverse[w1], gcrInverse[w2], gcrInverse[w3]
	if n0 < 0 || n1 < 0 || n2 < 0 || n3 < 0 {
		return 0, 0, 0, false
	}
	b0 = byte(n0)<<2 | (byte(n3)>>4)&0x3
	b1 = byte(n1)<<2 | (byte(n3)>>2)&0x3
	b2 = byte(n2)<<2 | byte(n3)&0x3
	return b0, b1, b2, true
}

// SectorPayloadLen is the interleaved tag+data size of one logical
// sector (12 bytes of tag data + 512 bytes of user data).
const SectorPayloadLen = 524

// EncodedSectorLen is the on-wire byte count EncodeSector produces:
// the payload plus a 3-byte checksum plus one pad byte, grouped into
// 4-byte GCR quanta (528 = 176*3).
const EncodedSectorLen = (SectorPayloadLen + 4) / 3 * 4

// checksum computes the three-accumulator running checksum the real
// IWM formatter uses: each accumulator covers every third byte of the
// payload, carrying into the next on overflow, which is what lets the
// decode side recompute the same checksum purely from the recovered
// payload bytes.
func checksum(payload []byte) (c0, c1, c2 byte) {
	acc := [3]byte{}
	carry := byte(0)
	for i, b := range payload {
		sum := uint16(acc[i%3]) + uint16(b) + uint16(carry)
		acc[i%3] = byte(sum)
		carry = byte(sum >> 8)
	}
	return acc[0], acc[1], acc[2]
}

// EncodeSector GCR-encodes a 524-byte sector payload (12 tag bytes +
// 512 user bytes) into its on-wire form: the payload followed by its
// 3-byte running checksum and one zero pad byte (528 bytes, a multiple
// of 3), grouped 3-to-4 throughout.
func EncodeSector(payload []byte) []byte {
	if len(payload) != SectorPayloadLen {
		panic("iwm: sector payload must be 524 bytes")
	}
	c0, c1, c2 := checksum(payload)
	buf := make([]byte, 0, SectorPayloadLen+4)
	buf = append(buf, payload...)
	buf = append(buf, c0, c1, c2, 0)

	out := make([]byte, 0, EncodedSectorLen)
	for i := 0; i < len(buf); i += 3 {
		g := encodeGroup(buf[i], buf[i+1], buf[i+2])
		out = append(out, g[:]...)
	}
	return out
}

// DecodeSector reverses EncodeSector, returning the 524-byte payload
// and whether the recomputed checksum matches the one carried on the
// wire.
func DecodeSector(encoded []byte) ([]byte, bool) {
	if len(encoded) != EncodedSectorLen {
		return nil, false
	}
	buf := make([]byte, 0, SectorPayloadLen+4)
	for i := 0; i < len(encoded); i += 4 {
		b0, b1, b2, ok := decodeGroup(encoded[i], encoded[i+1], encoded[i+2], encoded[i+3])
		if !ok {
			return nil, false
		}
		buf = append(buf, b0, b1, b2)
	}
	payload := buf[:SectorPayloadLen]
	wantC0, wantC1, wantC2 := buf[SectorPayloadLen], buf[SectorPayloadLen+1], buf[SectorPayloadLen+2]
	gotC0, gotC1, gotC2 := checksum(payload)
	return payload, gotC0 == wantC0 && gotC1 == wantC1 && gotC2 == wantC2
}
