// Package power requests an operating-system shutdown.
package power

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand powers the device off through systemd.
const DefaultCommand = "systemctl poweroff"

// commandTimeout bounds how long the power-off command may run. It only runs
// after teardown, so it never delays a tick.
const commandTimeout = 10 * time.Second

// PowerOff issues the shutdown request.
type PowerOff interface {
	PowerOff() error
}

// Command runs an external command to power off.
type Command struct {
	argv []string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewCommand splits cmdline on spaces. An empty cmdline yields a Command
// that only logs, for running off-device.
func NewCommand(cmdline string) *Command {
	return &Command{argv: strings.Fields(cmdline), run: runCommand}
}

// PowerOff runs the command.
func (c *Command) PowerOff() error {
	if len(c.argv) == 0 {
		log.Printf("power: no power-off command configured, skipping")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	log.Printf("power: running %s", strings.Join(c.argv, " "))
	if err := c.run(ctx, c.argv[0], c.argv[1:]...); err != nil {
		return fmt.Errorf("power off: %w", err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// FakePowerOff counts requests for test assertions.
type FakePowerOff struct {
	Calls int
	Err   error
}

// PowerOff records the call.
func (f *FakePowerOff) PowerOff() error {
	f.Calls++
	return f.Err
}

var errEmpty = errors.New("empty command")

// Validate reports whether cmdline names an executable that can be found.
func Validate(cmdline string) error {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return errEmpty
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("power-off command: %w", err)
	}
	return nil
}
