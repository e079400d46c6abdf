package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

// lemonbarArgs builds the renderer command line from the bar settings.
func lemonbarArgs(cfg LemonbarConfig) []string {
	args := []string{"-p"}
	for _, f := range cfg.Fonts {
		args = append(args, "-f", f.Str, "-o", strconv.Itoa(f.Offset))
	}
	width := ""
	if cfg.Dimensions.W > 0 {
		width = strconv.Itoa(cfg.Dimensions.W)
	}
	args = append(args, "-g", fmt.Sprintf("%sx%d+%d+%d", width, cfg.Dimensions.H, cfg.Offset.X, cfg.Offset.Y))
	args = append(args, "-u", strconv.Itoa(cfg.UnderlineThickness))
	args = append(args, "-F", cfg.Colors.Foreground, "-B", cfg.Colors.Background)
	return args
}

// WriterSink writes lines to a stream, flushing after each one. Feed-only
// mode uses it with stdout.
type WriterSink struct {
	w *bufio.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

func (s *WriterSink) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	return nil
}

func (s *WriterSink) Close() error {
	return s.w.Flush()
}

// LemonbarSink owns a renderer subprocess and its stdin.
type LemonbarSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	w      *bufio.Writer
	logger *slog.Logger

	done    chan struct{}
	waitErr error
	closing sync.Once
}

func StartLemonbar(path string, args []string, logger *slog.Logger) (*LemonbarSink, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lemonbar stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}
	logger.Info("lemonbar started", "pid", cmd.Process.Pid, "args", args)

	s := &LemonbarSink{
		cmd:    cmd,
		stdin:  stdin,
		w:      bufio.NewWriter(stdin),
		logger: logger,
		done:   make(chan struct{}),
	}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

func (s *LemonbarSink) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *LemonbarSink) WriteLine(line string) error {
	if s.exited() {
		return fmt.Errorf("%w: lemonbar exited: %v", ErrSink, s.waitErr)
	}
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	return nil
}

// Close kills the renderer and waits for it to be reaped.
func (s *LemonbarSink) Close() error {
	var err error
	s.closing.Do(func() {
		s.stdin.Close()
		if !s.exited() {
			if kerr := s.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				err = kerr
			}
		}
		<-s.done
		s.logger.Info("lemonbar stopped")
	})
	return err
}
