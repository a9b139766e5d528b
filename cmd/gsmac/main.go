/*
 * gsmac - Main process.
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

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/tclark/gsmac/internal/checkpoint"
	"github.com/tclark/gsmac/internal/config"
	"github.com/tclark/gsmac/internal/debugview"
	"github.com/tclark/gsmac/internal/gslog"
	"github.com/tclark/gsmac/internal/machine"
)

var Logger *slog.Logger

// vblHz is the host loop's target refresh rate; the scheduler itself
// decides how much emulated time that corresponds to based on mode.
const vblHz = 60.147

func main() {
	optConfig := getopt.StringLong("config", 'c', "gsmac.cfg", "Machine profile file")
	optROM := getopt.StringLong("rom", 'r', "", "ROM image path, overrides the profile")
	optMode := getopt.StringLong("mode", 'm', "", "Timing mode: unbounded, accurate, live; overrides the profile")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Start the interactive register/disassembly view")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gsmac: opening log file:", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debugLog := false
	Logger = slog.New(gslog.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, &debugLog))
	slog.SetDefault(Logger)

	Logger.Info("gsmac started")

	profile, err := config.Load(*optConfig)
	if err != nil {
		Logger.Error("loading configuration", "path", *optConfig, "error", err)
		os.Exit(1)
	}
	if *optROM != "" {
		profile.ROMPath = *optROM
	}
	if *optMode != "" {
		profile.TimingMode = *optMode
	}

	m, err := machine.New(profile, Logger)
	if err != nil {
		Logger.Error("building machine", "error", err)
		os.Exit(1)
	}
	m.Reset()

	if *optDebug {
		if err := debugview.Run(m); err != nil {
			Logger.Error("debug view exited with error", "error", err)
			os.Exit(1)
		}
		return
	}

	runHeadless(m)
}

// runHeadless drives the machine at vblHz until a SIGINT/SIGTERM
// arrives, accepting line commands from stdin in the meantime - the
// same shape as dispatching IPL requests from a terminal, just
// against the command registry instead of a single hardcoded action.
func runHeadless(m *machine.Machine) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			input, err := reader.ReadString('\n')
			if input != "" {
				lines <- input
			}
			if err != nil {
				return
			}
		}
	}()

	m.Start()
	ticker := time.NewTicker(time.Duration(float64(time.Second) / vblHz))
	defer ticker.Stop()

	Logger.Info("running", "pc", fmt.Sprintf("%08X", m.PC()))

loop:
	for {
		select {
		case <-sigChan:
			Logger.Info("got quit signal")
			break loop

		case line := <-lines:
			out, err := dispatchLine(m, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				continue
			}
			fmt.Print(out)

		case <-ticker.C:
			m.RunOneIteration(float64(time.Second/time.Millisecond) / vblHz)
		}
	}

	m.Stop()
	Logger.Info("stopped", "instructions", m.InstructionCount(), "cycles", m.CPUCycles())
}

// dispatchLine handles the two host-only commands that need direct
// file access (save/load a checkpoint) before falling through to the
// machine's own command registry for everything else.
func dispatchLine(m *machine.Machine, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	switch strings.ToLower(fields[0]) {
	case "save":
		return "", saveCheckpoint(m, fields[1:])
	case "load":
		return "", loadCheckpoint(m, fields[1:])
	default:
		return m.Commands.Dispatch(line)
	}
}

func checkpointKind(args []string) checkpoint.Kind {
	if len(args) > 1 && strings.EqualFold(args[1], "consolidated") {
		return checkpoint.KindConsolidated
	}
	return checkpoint.KindQuick
}

func saveCheckpoint(m *machine.Machine, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: save <path> [quick|consolidated]")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Save(f, checkpointKind(args))
}

func loadCheckpoint(m *machine.Machine, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: load <path> [quick|consolidated]")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Load(f, checkpointKind(args))
}
