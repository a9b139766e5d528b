package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tclark/gsmac/internal/disasm"
	"github.com/tclark/gsmac/internal/hexutil"
)

// buildCommands registers the monitor commands a host front end (or
// the stdin command loop in cmd/gsmac) dispatches through
// Commands.Dispatch - register dump, single-step, disassembly and
// memory dump, plus reset.
func (m *Machine) buildCommands() {
	m.Commands.Register("regs", "debug", "show cpu registers", m.cmdRegs)
	m.Commands.Register("step", "debug", "execute one instruction", m.cmdStep)
	m.Commands.Register("disasm", "debug", "disasm [addr] [count]", m.cmdDisasm)
	m.Commands.Register("dump", "debug", "dump <addr> <length>", m.cmdDump)
	m.Commands.Register("reset", "machine", "reset the machine", m.cmdReset)
	m.Commands.Register("help", "debug", "list commands", m.cmdHelp)
}

func (m *Machine) cmdHelp(args []string) (string, error) {
	return m.Commands.Help(), nil
}

func (m *Machine) cmdReset(args []string) (string, error) {
	m.Reset()
	return "machine reset", nil
}

func (m *Machine) cmdStep(args []string) (string, error) {
	m.cpu.RunInstruction()
	var b strings.Builder
	fmt.Fprintf(&b, "PC=%08X\n", m.cpu.PC)
	return b.String(), nil
}

func (m *Machine) cmdRegs(args []string) (string, error) {
	var b strings.Builder
	hexutil.FormatLong(&b, m.cpu.D[:])
	b.WriteString("\n")
	hexutil.FormatLong(&b, m.cpu.A[:])
	b.WriteString("\n")
	fmt.Fprintf(&b, "PC=%08X SR=%04X\n", m.cpu.PC, m.cpu.SR)
	return b.String(), nil
}

func (m *Machine) cmdDisasm(args []string) (string, error) {
	addr := uint32(m.cpu.PC)
	count := 10
	if len(args) > 0 {
		v, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
		if err != nil {
			return "", fmt.Errorf("machine: bad address %q: %w", args[0], err)
		}
		addr = uint32(v)
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err == nil && n > 0 {
			count = n
		}
	}
	ins := disasm.Disassemble(m.mem, addr, count)
	var b strings.Builder
	for _, in := range ins {
		fmt.Fprintf(&b, "%08X  %s\n", in.Addr, in.Text)
	}
	return b.String(), nil
}

func (m *Machine) cmdDump(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("machine: usage: dump <addr> <length>")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return "", fmt.Errorf("machine: bad address %q: %w", args[0], err)
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length <= 0 {
		return "", fmt.Errorf("machine: bad length %q", args[1])
	}
	data := make([]byte, length)
	for i := range data {
		data[i] = m.mem.Read8(uint32(addr) + uint32(i))
	}
	return hexutil.Dump(uint32(addr), data), nil
}
