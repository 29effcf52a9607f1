// Package emit provides destinations for generated assembly lines.
package emit

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileSink appends assembly lines to a file. It is not safe for concurrent
// use; one translation unit owns it.
type FileSink struct {
	path   string
	file   *os.File
	w      *bufio.Writer
	lines  int
	closed bool
}

// Create truncates or creates the file at path and returns a sink writing
// to it.
func Create(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return &FileSink{
		path: path,
		file: f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Path returns the destination path.
func (s *FileSink) Path() string {
	return s.path
}

// Lines returns how many lines were written.
func (s *FileSink) Lines() int {
	return s.lines
}

// Write appends lines in order, each terminated by a newline.
func (s *FileSink) Write(lines []string) error {
	if s.closed {
		return errors.Errorf("write %s: sink closed", s.path)
	}
	for _, line := range lines {
		if _, err := s.w.WriteString(line); err != nil {
			return errors.Wrapf(err, "write %s", s.path)
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return errors.Wrapf(err, "write %s", s.path)
		}
		s.lines++
	}
	return nil
}

// Close flushes buffered lines and releases the file. Only the first call
// does any work.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return errors.Wrapf(flushErr, "flush %s", s.path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "close %s", s.path)
	}
	return nil
}

// Buffer keeps assembly lines in memory.
type Buffer struct {
	lines []string
}

// Write appends lines in order.
func (b *Buffer) Write(lines []string) error {
	b.lines = append(b.lines, lines...)
	return nil
}

// Lines returns everything written so far.
func (b *Buffer) Lines() []string {
	return b.lines
}

// String joins the lines as they would appear in a file.
func (b *Buffer) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Reset discards all lines.
func (b *Buffer) Reset() {
	b.lines = nil
}
