package executor

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/execfoundry/runpipe/internal/progress"
)

// drain consumes one stream of a child process line by line: capture, pattern
// match, event emit. Each stream gets its own drain on its own goroutine, so
// line order holds within a stream but not across streams.
type drain struct {
	capture  bool
	patterns []progress.Pattern
	sink     progress.Sink
	started  time.Time
	buf      strings.Builder
}

func newDrain(capture bool, patterns []progress.Pattern, sink progress.Sink, started time.Time) *drain {
	return &drain{capture: capture, patterns: patterns, sink: sink, started: started}
}

// consume reads r until end-of-stream, which the producing process reaches by
// closing the handle, typically at exit. Lines have no length cap: a drain
// that stopped reading mid-stream would leave the child blocked on a full
// pipe buffer, turning an instant exit into a hang.
//
// A bare carriage return terminates a line just like a newline does:
// interactive tools (ffmpeg among them) rewrite their status line with "\r"
// and never send "\n" while working. CRLF counts as a single break.
//
// Call consume exactly once; text may only be read after the consuming
// goroutine has joined.
func (d *drain) consume(r io.Reader) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var line strings.Builder
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if line.Len() > 0 {
				d.handleLine(line.String())
			}
			return
		}
		switch b {
		case '\n':
			d.handleLine(line.String())
			line.Reset()
		case '\r':
			if next, peekErr := reader.Peek(1); peekErr == nil && next[0] == '\n' {
				_, _ = reader.ReadByte()
			}
			d.handleLine(line.String())
			line.Reset()
		default:
			line.WriteByte(b)
		}
	}
}

func (d *drain) handleLine(line string) {
	if d.capture {
		d.buf.WriteString(line)
		d.buf.WriteByte('\n')
	}
	if d.sink == nil || len(d.patterns) == 0 {
		return
	}
	if value, ok := progress.Match(line, d.patterns); ok {
		d.sink(progress.Event{Percent: value, Line: line, Elapsed: time.Since(d.started)})
	}
}

func (d *drain) text() string {
	return d.buf.String()
}
