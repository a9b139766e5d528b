/*
   gsmac hexutil: hex formatting for register and memory dumps.

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

// Package hexutil formats registers and memory ranges as hex text for
// the command registry and the debug view, the way a monitor/debugger
// renders machine state for a human.
package hexutil

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatLong writes each 32-bit value as 8 hex digits, space separated.
func FormatLong(str *strings.Builder, words []uint32) {
	for _, full := range words {
		shift := 28
		for i := 0; i < 8; i++ {
			str.WriteByte(hexMap[(full>>uint(shift))&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatWord writes each 16-bit value as 4 hex digits.
func FormatWord(str *strings.Builder, words []uint16) {
	for _, w := range words {
		shift := 12
		for i := 0; i < 4; i++ {
			str.WriteByte(hexMap[(w>>uint(shift))&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatByte writes a single byte as two hex digits.
func FormatByte(str *strings.Builder, b byte) {
	str.WriteByte(hexMap[(b>>4)&0xf])
	str.WriteByte(hexMap[b&0xf])
}

// FormatBytes writes a byte slice as hex pairs, optionally space
// separated.
func FormatBytes(str *strings.Builder, space bool, data []byte) {
	for _, b := range data {
		FormatByte(str, b)
		if space {
			str.WriteByte(' ')
		}
	}
}

// DumpLine renders one classic 16-bytes-per-line hexdump row: the
// base address, the hex bytes, and an ASCII gutter with non-printable
// bytes shown as '.'.
func DumpLine(base uint32, data []byte) string {
	var b strings.Builder
	FormatLong(&b, []uint32{base})
	b.WriteString(" ")
	FormatBytes(&b, true, data)
	for i := len(data); i < 16; i++ {
		b.WriteString("   ")
	}
	b.WriteString(" |")
	for _, c := range data {
		if c >= 0x20 && c < 0x7F {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteString("|")
	return b.String()
}

// Dump renders a full memory range as successive 16-byte DumpLine rows.
func Dump(base uint32, data []byte) string {
	var lines []string
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, DumpLine(base+uint32(off), data[off:end]))
	}
	return strings.Join(lines, "\n")
}
