package mocks

import (
	"io"
	"sync"
)

// Process is an in-memory process.Process. Lines passed to NewProcess are written to
// stdout in the background; the stream stays open until the process exits.
type Process struct {
	pid int

	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter

	done     chan struct{}
	exitOnce sync.Once

	mu      sync.Mutex
	killErr error
	kills   int
	exitErr error
}

// NewProcess creates a running fake process that prints lines.
func NewProcess(pid int, lines ...string) *Process {
	r, w := io.Pipe()
	p := &Process{
		pid:     pid,
		stdoutR: r,
		stdoutW: w,
		done:    make(chan struct{}),
	}
	if len(lines) > 0 {
		go func() {
			for _, l := range lines {
				if _, err := io.WriteString(w, l+"\n"); err != nil {
					return
				}
			}
		}()
	}
	return p
}

// FailKill makes every following Kill return err and leave the process running.
func (p *Process) FailKill(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killErr = err
}

// Exit terminates the process as if it crashed.
func (p *Process) Exit(err error) {
	p.exitOnce.Do(func() {
		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()
		_ = p.stdoutW.Close()
		close(p.done)
	})
}

// Kills returns how many times Kill was called.
func (p *Process) Kills() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kills
}

func (p *Process) Pid() int { return p.pid }

func (p *Process) Stdout() io.Reader { return p.stdoutR }

func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

func (p *Process) Kill() error {
	p.mu.Lock()
	p.kills++
	err := p.killErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.Exit(nil)
	return nil
}
