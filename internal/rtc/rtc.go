/*
   gsmac rtc: bit-banged real-time clock and parameter RAM.

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

// Package rtc models the serial real-time clock chip wired to VIA
// Port B bits 0-2: a 32-bit Mac-epoch (1904-01-01) second counter and
// 256 bytes of parameter RAM, driven by a one-byte command protocol
// that SetLines shifts one bit per call made with the clock line high.
package rtc

const pramSize = 256

// Command byte layout: bit7 set = read, bits 6-0 encode which
// operation. Decoded commands are time read/write, write-protect
// set/clear (0x35 with a data byte), and PRAM byte read/write with the
// address taken from bits 6-2, so only PRAM bytes 0x00-0x1F are
// reachable. Two-byte extended-address commands and the test-mode
// command are not decoded.
const (
	cmdReadTime  = 0x81
	cmdWriteTime = 0x01
	cmdWriteProtectOn  = 0x35 // paired with data byte 0x55
	cmdWriteProtectOff = 0x35 // paired with data byte 0xD5
)

type phase int

const (
	phaseIdle phase = iota
	phaseCommand
	phaseData
)

// RTC is the chip: second counter, parameter RAM, and the serial
// shift state machine the VIA's enable/clock/data lines drive.
type RTC struct {
	Seconds uint32
	PRAM    [pramSize]byte

	writeProtect bool
	testMode     bool

	phase      phase
	shiftReg   uint32
	bitCount   int
	pendingCmd uint8
	extended   bool

	enbPrev bool
	dataOut bool

	readBuf []byte
	readPos int
}

// New creates an RTC with the second counter seeded to epoch (caller
// converts from host wall-clock time to the Mac epoch before calling).
func New(initialSeconds uint32) *RTC {
	r := &RTC{Seconds: initialSeconds}
	return r
}

// Tick advances the second counter by one; the scheduler delivers this
// once per emulated second via a registered 1 Hz event.
func (r *RTC) Tick() {
	r.Seconds++
}

// SetLines is called on every VIA Port B write with the three
// bit-banged lines (enable, active low; clock; data). It returns the
// current DataOut level the VIA should read back on the data line
// when it configures that bit as an input.
func (r *RTC) SetLines(enb, clk, data bool) bool {
	if enb {
		// Enable deasserted: idle, nothing shifts.
		r.enbPrev = enb
		r.phase = phaseIdle
		return r.dataOut
	}
	if r.enbPrev { // falling edge of /enable: begin a command cycle
		r.phase = phaseCommand
		r.shiftReg = 0
		r.bitCount = 0
	}
	r.enbPrev = enb
	if clk {
		r.shiftBit(data)
	}
	return r.dataOut
}

// shiftBit is invoked by every SetLines call made with enable asserted
// and the clock line high, shifting one bit of the command or data
// byte. SetLines does not detect edges: two consecutive calls with
// the clock high shift two bits.
func (r *RTC) shiftBit(data bool) {
	bit := uint32(0)
	if data {
		bit = 1
	}
	r.shiftReg = (r.shiftReg << 1) | bit
	r.bitCount++

	switch r.phase {
	case phaseCommand:
		if r.bitCount == 8 {
			r.pendingCmd = uint8(r.shiftReg)
			r.bitCount = 0
			r.shiftReg = 0
			r.phase = phaseData
			if r.pendingCmd&0x80 != 0 {
				r.prepareRead()
			}
		}
	case phaseData:
		if r.pendingCmd&0x80 != 0 {
			// Read: dataOut is driven bit-by-bit from shiftReg's MSB,
			// set up by prepareRead/advanceRead rather than here.
			r.advanceRead()
		} else if r.bitCount == 8 {
			r.completeWrite(uint8(r.shiftReg))
			r.bitCount = 0
			r.shiftReg = 0
		}
	}
}

func (r *RTC) prepareRead() {
	r.readBuf = r.readTarget(r.pendingCmd)
	r.readPos = 0
	r.advanceRead()
}

func (r *RTC) readTarget(cmd uint8) []byte {
	switch {
	case cmd == cmdReadTime:
		b := make([]byte, 4)
		b[0] = byte(r.Seconds >> 24)
		b[1] = byte(r.Seconds >> 16)
		b[2] = byte(r.Seconds >> 8)
		b[3] = byte(r.Seconds)
		return b
	default:
		addr := pramAddress(cmd)
		if int(addr) < pramSize {
			return []byte{r.PRAM[addr]}
		}
		return []byte{0}
	}
}

func (r *RTC) advanceRead() {
	if r.readPos >= len(r.readBuf)*8 {
		return
	}
	byteIdx := r.readPos / 8
	bitIdx := 7 - (r.readPos % 8)
	r.dataOut = (r.readBuf[byteIdx]>>uint(bitIdx))&1 != 0
	r.readPos++
}

func (r *RTC) completeWrite(value uint8) {
	if r.writeProtect && r.pendingCmd != cmdWriteProtectOn {
		return // writes fail silently under write-protect
	}
	switch r.pendingCmd {
	case cmdWriteTime:
		r.Seconds = (r.Seconds << 8) | uint32(value)
	case cmdWriteProtectOn:
		if value == 0x55 {
			r.writeProtect = true
		} else if value == 0xD5 {
			r.writeProtect = false
		}
	default:
		addr := pramAddress(r.pendingCmd)
		if int(addr) < pramSize {
			r.PRAM[addr] = value
		}
	}
}

func pramAddress(cmd uint8) uint8 {
	return (cmd >> 2) & 0x1F
}

// WriteProtected reports the current write-protect latch state, used
// by tests and by the checkpoint snapshot.
func (r *RTC) WriteProtected() bool { return r.writeProtect }
