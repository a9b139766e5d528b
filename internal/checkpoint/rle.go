/*
   gsmac checkpoint: RLE compression for payload blocks.

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

package checkpoint

// escByte is reserved to introduce a run or an escaped literal. Using
// byte-stuffing (the escape byte, when it appears literally in the
// input, is re-encoded as a zero-length "run") avoids ambiguity
// without needing a byte value the input is guaranteed not to
// contain - device state regularly contains every byte value.
const escByte = 0x90

const minRunLength = 4

// RLEEncode compresses src: runs of four or more equal bytes become
// {esc, count, value}; a literal occurrence of esc itself becomes
// {esc, 0, esc}; every other byte passes through unchanged.
func RLEEncode(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		b := src[i]
		runLen := 1
		for i+runLen < len(src) && src[i+runLen] == b && runLen < 255 {
			runLen++
		}
		switch {
		case runLen >= minRunLength:
			out = append(out, escByte, byte(runLen), b)
			i += runLen
		case b == escByte:
			out = append(out, escByte, 0, escByte)
			i++
		default:
			out = append(out, b)
			i++
		}
	}
	return out
}

// RLEDecode reverses RLEEncode.
func RLEDecode(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		b := src[i]
		if b != escByte {
			out = append(out, b)
			i++
			continue
		}
		if i+2 >= len(src) {
			break // truncated escape sequence: stop, caller sees a short result
		}
		count := src[i+1]
		value := src[i+2]
		if count == 0 {
			out = append(out, value)
		} else {
			for n := byte(0); n < count; n++ {
				out = append(out, value)
			}
		}
		i += 3
	}
	return out
}
