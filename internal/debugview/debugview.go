/*
   gsmac debugview: interactive register/disassembly monitor.

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

// Package debugview is an optional bubbletea front end onto a running
// machine: registers, the next few disassembled instructions, and the
// VIA/SCC/SCSI latches a hung boot usually traces back to. It never
// drives the machine's own pacing - space/j single-steps one CPU
// instruction, nothing auto-runs.
package debugview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/tclark/gsmac/internal/disasm"
	"github.com/tclark/gsmac/internal/machine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	paneStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	pcStyle     = lipgloss.NewStyle().Reverse(true)
)

type model struct {
	m       *machine.Machine
	prevPC  uint32
	lastErr error
	quit    bool
}

// New builds a debug session over an already-constructed machine.
func New(m *machine.Machine) model {
	return model{m: m}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.m.PC()
			if !m.m.Step() {
				m.lastErr = fmt.Errorf("debugview: cpu stopped at %08X", m.m.PC())
			}
		case "r":
			m.m.Reset()
		}
	}
	return m, nil
}

func (m model) registerPane() string {
	d, a, pc, sr := m.m.Registers()
	var b strings.Builder
	b.WriteString(headerStyle.Render("registers") + "\n")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "D%d=%08X  A%d=%08X\n", i, d[i], i, a[i])
	}
	fmt.Fprintf(&b, "PC=%08X  SR=%04X  overlay=%v\n", pc, sr, m.m.OverlayEnabled())
	fmt.Fprintf(&b, "instructions=%d cycles=%d\n", m.m.InstructionCount(), m.m.CPUCycles())
	return b.String()
}

func (m model) disasmPane() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("disassembly") + "\n")
	pc := m.m.PC()
	for _, in := range m.m.NextInstructions(8) {
		line := fmt.Sprintf("%08X  %s", in.Addr, in.Text)
		if in.Addr == pc {
			line = pcStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

var scsiPhaseNames = [...]string{"BusFree", "Arbitration", "Selection", "Reselection", "Command", "DataIn", "DataOut", "Status", "MessageIn", "MessageOut"}

func scsiPhaseName(p int) string {
	if p < 0 || p >= len(scsiPhaseNames) {
		return fmt.Sprintf("phase(%d)", p)
	}
	return scsiPhaseNames[p]
}

func (m model) peripheralPane() string {
	st := m.m.Status()
	var b strings.Builder
	b.WriteString(headerStyle.Render("peripherals") + "\n")
	fmt.Fprintf(&b, "VIA  IFR=%02X IER=%02X ORA=%02X ORB=%02X T1C=%04X T2C=%04X\n",
		st.VIA.IFR, st.VIA.IER, st.VIA.ORA, st.VIA.ORB, st.VIA.T1C, st.VIA.T2C)
	fmt.Fprintf(&b, "SCC  A.hunting=%v A.dcd=%v B.hunting=%v B.dcd=%v\n",
		st.SCC.A.Hunting, st.SCC.A.DCD, st.SCC.B.Hunting, st.SCC.B.DCD)
	fmt.Fprintf(&b, "SCSI phase=%s selectedID=%d lastStatus=%02X\n",
		scsiPhaseName(int(st.SCSI.Phase)), st.SCSI.SelectedID, st.SCSI.LastStatus)
	return b.String()
}

func (m model) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(m.registerPane()),
		paneStyle.Render(m.disasmPane()),
	)
	bottom := paneStyle.Render(m.peripheralPane())
	footer := "space/j: step  r: reset  q: quit"
	if m.lastErr != nil {
		footer = m.lastErr.Error() + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, footer)
}

// Run starts the interactive debug session and blocks until the user
// quits.
func Run(m *machine.Machine) error {
	_, err := tea.NewProgram(New(m)).Run()
	return err
}

// Dump returns a structured spew dump of a disassembly slice, for a
// host that wants the raw struct fields alongside the rendered text.
func Dump(ins []disasm.Instruction) string {
	return spew.Sdump(ins)
}
