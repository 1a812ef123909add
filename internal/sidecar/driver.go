// Package sidecar drives a persistent exiftool process in -stay_open mode.
//
// exiftool reads newline-separated arguments from its stdin, runs them when it
// sees an "-execute" line and prints "{ready}" once the command's output is
// complete. The pipe has no other framing, so the Driver buffers stdout line by
// line in a background goroutine and hands each sentinel-delimited block to the
// caller blocked in Submit. Only one command is ever in flight.
package sidecar

import (
	"bufio"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"tagshelf/internal/errors"
	"tagshelf/internal/log"
)

const (
	// Sentinel is the line exiftool prints after each command's output
	Sentinel = "{ready}"
	// ExecuteMarker terminates one command block on stdin
	ExecuteMarker = "-execute"

	// bulk reads come back as one JSON document; a single line can be long
	maxLineSize = 16 * 1024 * 1024
	// how long Shutdown waits for the process to exit after the stop command
	exitGrace = 5 * time.Second
)

// StayOpenArgs are the arguments that put exiftool into batch mode reading
// commands from stdin.
var StayOpenArgs = []string{"-stay_open", "True", "-@", "-"}

// Options configures how the sidecar process is launched
type Options struct {
	// Binary is the executable name or path, "exiftool" if empty
	Binary string
	// Args replaces StayOpenArgs when set
	Args []string
	// Env replaces the inherited environment when set
	Env []string
	// Timeout bounds each Submit; zero blocks until a response or process exit
	Timeout time.Duration
	// Logger receives stderr output and lifecycle messages
	Logger log.Logging
}

// Driver owns one running sidecar process
type Driver struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger log.Logging

	timeout time.Duration

	// one-slot handoff from the reader goroutine to Submit
	responses chan string
	// closed by Shutdown to stop the reader from delivering further responses
	done chan struct{}
	// closed by the reader once stdout reaches EOF
	exited chan struct{}

	mu       sync.Mutex // serialises Submit
	writeMu  sync.Mutex // guards stdin; Shutdown takes it without mu
	broken   bool       // set when a response was abandoned and FIFO pairing is lost
	stopOnce sync.Once
	stopErr  error
}

// Start launches the sidecar process. It fails with a ProcessUnavailable
// error if the binary cannot be found or spawned.
func Start(opts Options) (*Driver, error) {
	binary := opts.Binary
	if binary == "" {
		binary = "exiftool"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With(log.F("sidecar", binary))

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, errors.NewSidecarError("sidecar binary not found", errors.ProcessUnavailable, err)
	}

	args := opts.Args
	if args == nil {
		args = StayOpenArgs
	}

	cmd := exec.Command(path, args...)
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	cmd.Stderr = &stderrLog{logger: logger}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewSidecarError("failed to open sidecar stdin", errors.ProcessUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewSidecarError("failed to open sidecar stdout", errors.ProcessUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.NewSidecarError("failed to start sidecar", errors.ProcessUnavailable, err)
	}

	d := &Driver{
		cmd:       cmd,
		stdin:     stdin,
		logger:    logger,
		timeout:   opts.Timeout,
		responses: make(chan string, 1),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	go d.read(stdout)

	logger.With(log.F("pid", cmd.Process.Pid)).Debug("Sidecar started")
	return d, nil
}

// read accumulates stdout lines and delivers one response per sentinel.
func (d *Driver) read(stdout io.Reader) {
	defer close(d.exited)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var buf strings.Builder
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line != Sentinel {
			buf.WriteString(line)
			buf.WriteByte('\n')
			continue
		}

		response := buf.String()
		buf.Reset()
		select {
		case d.responses <- response:
		case <-d.done:
			// keep the pipe drained so the process can exit
			_, _ = io.Copy(io.Discard, stdout)
			return
		}
	}

	if err := scanner.Err(); err != nil {
		d.logger.With(log.F("error", err.Error())).Warn("Sidecar output stream failed")
	}
	if buf.Len() > 0 {
		d.logger.With(log.F("bytes", buf.Len())).Debug("Discarding unterminated sidecar output")
	}
}

// Submit sends one command block and blocks until its response arrives.
// Each element of lines is one argument line; the execute marker is appended.
// It must not be called concurrently; concurrent calls are serialised.
func (d *Driver) Submit(lines []string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			return "", errors.Newf("sidecar argument contains a line break: %q", line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(ExecuteMarker)
	b.WriteByte('\n')

	if err := d.write(b.String()); err != nil {
		d.broken = true
		return "", errors.NewSidecarError("failed to write to sidecar", errors.DriverTerminated, err)
	}

	var expired <-chan time.Time
	if d.timeout > 0 {
		timer := time.NewTimer(d.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case response := <-d.responses:
		return response, nil
	case <-d.exited:
		// the last response may have been handed off just before EOF
		select {
		case response := <-d.responses:
			return response, nil
		default:
		}
		return "", errors.NewSidecarError("sidecar exited before responding", errors.DriverTerminated, nil)
	case <-expired:
		// a late response would be paired with the next command
		d.broken = true
		return "", errors.NewSidecarError("sidecar response timed out after "+d.timeout.String(), errors.DriverTerminated, nil)
	}
}

func (d *Driver) write(s string) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_, err := io.WriteString(d.stdin, s)
	return err
}

func (d *Driver) usable() error {
	select {
	case <-d.done:
		return errors.NewSidecarError("sidecar already shut down", errors.DriverTerminated, nil)
	case <-d.exited:
		return errors.NewSidecarError("sidecar process has exited", errors.DriverTerminated, nil)
	default:
	}
	if d.broken {
		return errors.NewSidecarError("sidecar lost response ordering", errors.DriverTerminated, nil)
	}
	return nil
}

// Alive reports whether the process is still producing output
func (d *Driver) Alive() bool {
	select {
	case <-d.exited:
		return false
	default:
		return true
	}
}

// Shutdown asks exiftool to leave stay_open mode, stops the reader and
// waits for the process. Safe to call more than once. It does not take the
// submit lock, so a Submit blocked on a hung process is released with a
// DriverTerminated error once the process goes away. Writes to stdin are
// still exclusive, so the stop command never lands inside a command block.
func (d *Driver) Shutdown() error {
	d.stopOnce.Do(func() {
		stop := strings.Join(StopArgs(), "\n") + "\n"
		d.writeMu.Lock()
		if _, err := io.WriteString(d.stdin, stop); err != nil {
			d.logger.With(log.F("error", err.Error())).Debug("Sidecar stdin already closed")
		}
		_ = d.stdin.Close()
		d.writeMu.Unlock()
		close(d.done)

		select {
		case <-d.exited:
		case <-time.After(exitGrace):
			d.logger.Warn("Sidecar did not exit after stop command, killing it")
			_ = d.cmd.Process.Kill()
			<-d.exited
		}

		if err := d.cmd.Wait(); err != nil {
			d.stopErr = errors.NewSidecarError("sidecar exited with error", errors.DriverTerminated, err)
		}
		d.logger.Debug("Sidecar stopped")
	})
	return d.stopErr
}

// stderrLog forwards the sidecar's stderr to the logger line by line
type stderrLog struct {
	logger log.Logging
}

func (s *stderrLog) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.logger.With(log.F("stderr", line)).Warn("Sidecar reported a problem")
		}
	}
	return len(p), nil
}
