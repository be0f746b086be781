// Package cmd_test provides a scriptable cmd.Executor for tests.
package cmd_test

import (
	"os/exec"
)

type MockCmdExec struct {
	RunFunc    func(cmd *exec.Cmd) error
	OutputFunc func(cmd *exec.Cmd) ([]byte, error)
}

func (e MockCmdExec) Run(cmd *exec.Cmd) error {
	if e.RunFunc == nil {
		return nil
	}
	return e.RunFunc(cmd)
}

func (e MockCmdExec) Output(cmd *exec.Cmd) ([]byte, error) {
	if e.OutputFunc == nil {
		return nil, nil
	}
	return e.OutputFunc(cmd)
}
