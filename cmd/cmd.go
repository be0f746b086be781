// Package cmd wraps process execution so callers can be tested without
// spawning real programs.
package cmd

import (
	"os/exec"
	"strings"
)

// Executor runs external commands.
type Executor interface {
	Run(cmd *exec.Cmd) error
	Output(cmd *exec.Cmd) ([]byte, error)
}

// Exec is the Executor backed by os/exec.
type Exec struct{}

func (e Exec) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (e Exec) Output(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

func MakeExecutor() Executor {
	return Exec{}
}

// ToString renders a command line for logs.
func ToString(cmd *exec.Cmd) string {
	if cmd == nil {
		return "<nil>"
	}
	return strings.Join(cmd.Args, " ")
}
