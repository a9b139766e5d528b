/*
 * gsmac - machine profile parser tests
 *
 * Copyright 2026, gsmac project contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = `# sample Mac Plus profile
model Plus
ram 4M
rom ./roms/plus-3.rom
disk ./disks/system.img
disk ./disks/scratch.img
timing Accurate
soundbuf size=370
`

func TestParseProfile(t *testing.T) {
	p, err := parse(strings.NewReader(sample))
	assert.NoError(t, err)
	assert.Equal(t, "plus", p.Model)
	assert.EqualValues(t, 4*1024*1024, p.RAMBytes)
	assert.Equal(t, "./roms/plus-3.rom", p.ROMPath)
	assert.Equal(t, []string{"./disks/system.img", "./disks/scratch.img"}, p.Disks)
	assert.Equal(t, "accurate", p.TimingMode)

	v, ok := p.Get("soundbuf")
	assert.True(t, ok)
	assert.Equal(t, "size=370", v)
}

func TestParseSizeSuffixes(t *testing.T) {
	n, err := parseSize("128K")
	assert.NoError(t, err)
	assert.EqualValues(t, 128*1024, n)

	n, err = parseSize("1M")
	assert.NoError(t, err)
	assert.EqualValues(t, 1024*1024, n)

	_, err = parseSize("abc")
	assert.Error(t, err)
}

func TestRamRejectsMultipleValues(t *testing.T) {
	_, err := parse(strings.NewReader("ram 1M 2M\n"))
	assert.Error(t, err)
}
