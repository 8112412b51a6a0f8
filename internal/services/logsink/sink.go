// Package logsink implements the bounded log sink each task's captured
// output is routed into: a (minimum level, max bytes, max lines)
// window with a single synthetic truncation marker.
package logsink

import (
	"bytes"
	"sync"

	"github.com/ecoci/ecoci/pkg/mlog"
)

const truncatedLine = "[output truncated]\n"

// Sink is a thread-safe, bounded capture buffer. One is created per
// task; BuildOrTest forks the shared Prepare sink per toolchain via
// Duplicate so neither toolchain's output contaminates the other's.
type Sink struct {
	mu sync.Mutex

	minLevel mlog.LogLevel
	maxBytes int
	maxLines int

	buf       bytes.Buffer
	lines     int
	truncated bool
}

// New creates a Sink bounded by maxBytes and maxLines; entries below
// minLevel are dropped without counting against either bound.
func New(minLevel mlog.LogLevel, maxBytes, maxLines int) *Sink {
	return &Sink{minLevel: minLevel, maxBytes: maxBytes, maxLines: maxLines}
}

// Write appends one log line at the given level, respecting both
// bounds. Once either bound is hit, a single "truncated" marker line
// is appended and all further writes are dropped silently.
func (s *Sink) Write(level mlog.LogLevel, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level > s.minLevel {
		return
	}

	if s.truncated {
		return
	}

	if s.buf.Len()+len(line) > s.maxBytes || s.lines+1 > s.maxLines {
		s.buf.WriteString(truncatedLine)
		s.truncated = true

		return
	}

	s.buf.WriteString(line)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		s.buf.WriteByte('\n')
	}

	s.lines++
}

// Bytes returns a copy of the plain-text log captured so far.
func (s *Sink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())

	return out
}

// Duplicate returns an independent Sink carrying a copy of this one's
// contents and the same bounds, used to fork a shared "prepare" log
// per toolchain.
func (s *Sink) Duplicate() *Sink {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup := &Sink{
		minLevel:  s.minLevel,
		maxBytes:  s.maxBytes,
		maxLines:  s.maxLines,
		lines:     s.lines,
		truncated: s.truncated,
	}
	dup.buf.Write(s.buf.Bytes())

	return dup
}
