package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

const (
	// EnvFFmpeg carries the ffmpeg path to the server.
	EnvFFmpeg = "FFMPEG_BIN"
	// EnvFFprobe carries the ffprobe path to the server.
	EnvFFprobe = "FFPROBE_BIN"
	// EnvNoCORS disables CORS checks in the server when set to "1".
	EnvNoCORS = "NO_CORS"
)

// Process is a running server child.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int
	// Stdout is the read end of the child's standard output. It reaches EOF once the child
	// and every process that inherited the pipe have exited.
	Stdout() io.Reader
	// Done is closed once the child has exited and been reaped.
	Done() <-chan struct{}
	// Alive reports whether the child has not exited yet. It never blocks.
	Alive() bool
	// ExitErr returns the wait result once Done is closed.
	ExitErr() error
	// Kill forcefully terminates the child. Killing an already exited child is not an error.
	Kill() error
}

// Launcher spawns server processes.
type Launcher interface {
	Launch(cfg ServerConfig) (Process, error)
}

// ExecLauncher spawns the server with os/exec.
type ExecLauncher struct {
	logger *zap.Logger
}

// NewLauncher creates a launcher that logs spawned commands to logger.
func NewLauncher(logger *zap.Logger) *ExecLauncher {
	return &ExecLauncher{logger: logger}
}

// Command builds the server command line for cfg without starting it.
func Command(cfg ServerConfig) *exec.Cmd {
	cmd := exec.Command(cfg.Runtime(), cfg.Server())
	cmd.Env = append(os.Environ(), Env(cfg)...)
	cmd.Stderr = os.Stderr
	setProcAttr(cmd)
	return cmd
}

// Env returns the variables added on top of the inherited environment.
func Env(cfg ServerConfig) []string {
	env := []string{
		EnvFFmpeg + "=" + cfg.FFmpeg(),
		EnvFFprobe + "=" + cfg.FFprobe(),
	}
	if cfg.DisableCORS() {
		env = append(env, EnvNoCORS+"=1")
	}
	return env
}

// Launch starts the server described by cfg. It returns as soon as the child is spawned.
func (l *ExecLauncher) Launch(cfg ServerConfig) (Process, error) {
	if cfg.IsZero() {
		return nil, errors.New("server config is not initialized")
	}

	cmd := Command(cfg)

	// The write end goes to the child only; Wait must not own the read end.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	cmd.Stdout = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("failed to spawn %s: %w", cfg.Runtime(), err)
	}
	_ = pw.Close()

	p := &execProcess{
		cmd:    cmd,
		stdout: pr,
		done:   make(chan struct{}),
	}
	go p.wait()

	l.logger.Info("server process spawned",
		zap.Int("pid", p.Pid()),
		zap.String("runtime", cfg.Runtime()),
		zap.String("script", cfg.Server()),
		zap.Bool("disable_cors", cfg.DisableCORS()),
	)

	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	stdout  *os.File
	done    chan struct{}
	exitErr error
}

func (p *execProcess) wait() {
	p.exitErr = p.cmd.Wait()
	close(p.done)
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *execProcess) ExitErr() error {
	select {
	case <-p.done:
		return p.exitErr
	default:
		return nil
	}
}

func (p *execProcess) Kill() error {
	if !p.Alive() {
		return nil
	}
	if err := kill(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill server process %d: %w", p.Pid(), err)
	}
	return nil
}
