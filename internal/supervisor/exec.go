package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// WorkerEnv marks a process as a worker: the primary sets it when spawning,
// main dispatches on it.
const WorkerEnv = "CHATWIRE_WORKER"

// IsWorkerProcess reports whether the current process was spawned as a
// worker by a supervisor primary.
func IsWorkerProcess() bool {
	return os.Getenv(WorkerEnv) == "1"
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Signal(sig syscall.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

// SelfExecSpawner re-executes the current binary as a worker. Workers
// inherit the primary's environment plus the worker marker, and share the
// primary's stdout and stderr.
func SelfExecSpawner() (SpawnFunc, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}

	return func(slot int) (Process, error) {
		cmd := exec.Command(bin)
		cmd.Env = append(os.Environ(), WorkerEnv+"=1")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start worker for slot %d: %w", slot, err)
		}
		return &execProcess{cmd: cmd}, nil
	}, nil
}
