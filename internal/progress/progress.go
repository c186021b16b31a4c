// Package progress extracts completion estimates from unstructured process
// output, one line at a time.
package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Event reports a single progress observation. Events are transient: they are
// handed to the caller's sink as lines arrive and never retained.
type Event struct {
	Percent float64
	Line    string
	Elapsed time.Duration
}

// Sink receives progress events. Sinks run on the drain goroutine for the
// stream that produced the line, so per-stream event order follows line
// order; a process has two streams, so sinks must tolerate concurrent calls.
type Sink func(Event)

// ExtractFunc converts the capture groups of a successful match into a
// percentage. groups[0] is the full match, as with regexp.FindStringSubmatch.
// A returned error discards the observation for that line.
type ExtractFunc func(groups []string) (float64, error)

// Pattern pairs a compiled matching rule with its extraction function.
type Pattern struct {
	Name    string
	rule    *regexp.Regexp
	extract ExtractFunc
}

// NewPattern compiles expr and returns the resulting Pattern.
func NewPattern(name, expr string, extract ExtractFunc) (Pattern, error) {
	rule, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s: %w", name, err)
	}
	if extract == nil {
		return Pattern{}, fmt.Errorf("pattern %s: extract function is required", name)
	}
	return Pattern{Name: name, rule: rule, extract: extract}, nil
}

// MustPattern is NewPattern for package-level pattern construction.
func MustPattern(name, expr string, extract ExtractFunc) Pattern {
	p, err := NewPattern(name, expr, extract)
	if err != nil {
		panic(err)
	}
	return p
}

// Match applies the pattern to a line. The boolean is false when the rule did
// not match or the extraction failed.
func (p Pattern) Match(line string) (float64, bool) {
	groups := p.rule.FindStringSubmatch(line)
	if groups == nil {
		return 0, false
	}
	value, err := p.extract(groups)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Match tries each pattern in order; the first structural match wins and
// short-circuits the rest for that line. If the winning pattern's extraction
// fails, the line yields nothing at all. Values are passed through unclamped:
// a line claiming "150%" yields 150.
func Match(line string, patterns []Pattern) (float64, bool) {
	for _, p := range patterns {
		groups := p.rule.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		value, err := p.extract(groups)
		if err != nil {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// Fraction matches "current/total" counters and normalizes them to a
// percentage.
func Fraction() Pattern {
	return MustPattern("fraction", `(\d+)\s*/\s*(\d+)`, func(groups []string) (float64, error) {
		current, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			return 0, err
		}
		total, err := strconv.ParseFloat(groups[2], 64)
		if err != nil {
			return 0, err
		}
		if total == 0 {
			return 0, fmt.Errorf("fraction with zero total")
		}
		return current / total * 100, nil
	})
}

// Percent matches an explicit "NN%" marker.
func Percent() Pattern {
	return MustPattern("percent", `(\d+(?:\.\d+)?)\s*%`, func(groups []string) (float64, error) {
		return strconv.ParseFloat(groups[1], 64)
	})
}

// FFmpegFrame matches ffmpeg's "frame= N" status line and reports the raw
// frame count, not a percentage. The unnormalized scale is a long-standing
// quirk that downstream callers depend on; do not fix it here.
func FFmpegFrame() Pattern {
	return MustPattern("ffmpeg-frame", `frame=\s*(\d+)`, func(groups []string) (float64, error) {
		return strconv.ParseFloat(groups[1], 64)
	})
}

// CommonPatterns returns the stock pattern set: fraction, percent, and the
// ffmpeg frame counter, tried in that order.
func CommonPatterns() []Pattern {
	return []Pattern{Fraction(), Percent(), FFmpegFrame()}
}

// Preset resolves a pattern-set name as used in job files.
func Preset(name string) ([]Pattern, bool) {
	switch name {
	case "fraction":
		return []Pattern{Fraction()}, true
	case "percent":
		return []Pattern{Percent()}, true
	case "ffmpeg-frame":
		return []Pattern{FFmpegFrame()}, true
	case "common":
		return CommonPatterns(), true
	}
	return nil, false
}
