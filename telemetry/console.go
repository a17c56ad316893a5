package telemetry

import (
	"fmt"
	"os"
)

// Console writes Events to stdout, one line per event, grounded on the
// teacher's util/logger/console.go Console writer minus the ANSI color
// option (no terminal the physics core runs in needs it).
type Console struct {
	out *os.File
}

// NewConsole returns a Console writer over os.Stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

func (c *Console) Write(event Event) {
	fmt.Fprintln(c.out, Format(event))
}

func (c *Console) Close() {}
