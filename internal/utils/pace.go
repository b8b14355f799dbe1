package utils

import (
	"io"
	"net/http"
	"time"
)

// Character pacing for streamed chat output. Whitespace flows quickly,
// punctuation pauses longest so the text reads like natural typing.
const (
	whitespaceDelay  = 10 * time.Millisecond
	punctuationDelay = 50 * time.Millisecond
	defaultDelay     = 20 * time.Millisecond
)

// PaceWriter streams text character by character with typing-like delays,
// flushing after every character when the underlying writer supports it.
type PaceWriter struct {
	w     io.Writer
	sleep func(time.Duration)
}

// NewPaceWriter wraps a writer with character pacing
func NewPaceWriter(w io.Writer) *PaceWriter {
	return &PaceWriter{w: w, sleep: time.Sleep}
}

// WriteText emits the text one rune at a time with pacing delays
func (p *PaceWriter) WriteText(text string) error {
	flusher, _ := p.w.(http.Flusher)
	for _, r := range text {
		if _, err := io.WriteString(p.w, string(r)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		p.sleep(delayFor(r))
	}
	return nil
}

func delayFor(r rune) time.Duration {
	switch r {
	case ' ', '\n':
		return whitespaceDelay
	case '.', ',', '!', '?', ':', ';':
		return punctuationDelay
	default:
		return defaultDelay
	}
}
