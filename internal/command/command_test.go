package command

import (
	"fmt"
	"strings"
	"testing"
)

func TestDispatchRoutesToRegisteredCommand(t *testing.T) {
	var r Registry
	r.Register("echo", "debug", "echo arguments back", func(args []string) (string, error) {
		return strings.Join(args, " "), nil
	})
	out, err := r.Dispatch("echo hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", out)
	}
}

func TestDispatchUnknownCommandErrors(t *testing.T) {
	var r Registry
	_, err := r.Dispatch("bogus")
	if err == nil {
		t.Fatalf("expected an error for an unregistered command")
	}
}

func TestDispatchEmptyLineIsNoop(t *testing.T) {
	var r Registry
	out, err := r.Dispatch("   ")
	if err != nil || out != "" {
		t.Fatalf("expected empty no-op, got (%q, %v)", out, err)
	}
}

func TestHelpGroupsByCategory(t *testing.T) {
	var r Registry
	r.Register("step", "debug", "single-step the CPU", func(args []string) (string, error) { return "", nil })
	r.Register("boot", "machine", "boot the machine", func(args []string) (string, error) { return "", nil })
	help := r.Help()
	if !strings.Contains(help, "debug:") || !strings.Contains(help, "machine:") {
		t.Fatalf("expected both categories in help output:\n%s", help)
	}
	if strings.Index(help, "debug:") > strings.Index(help, "machine:") {
		t.Fatalf("expected categories sorted alphabetically:\n%s", help)
	}
}

func TestRegisterReplacesExistingEntry(t *testing.T) {
	var r Registry
	calls := 0
	r.Register("ping", "debug", "ping", func(args []string) (string, error) { calls++; return "", nil })
	r.Register("ping", "debug", "ping", func(args []string) (string, error) { calls += 10; return "", nil })
	_, _ = r.Dispatch("ping")
	if calls != 10 {
		t.Fatalf("expected replacement command to run, calls=%d", calls)
	}
	_ = fmt.Sprintf("%d", calls)
}
