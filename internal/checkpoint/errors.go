package checkpoint

import "fmt"

func errShortStream(expected string) error {
	return fmt.Errorf("checkpoint: stream ended before subsystem %q was restored", expected)
}

func errSourceMismatch(expected, got string, line uint32) error {
	return fmt.Errorf("checkpoint: expected subsystem %q, found %q at line %d", expected, got, line)
}
