package interview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Speaker reads questions out loud. Cancel stops any speech in progress and
// must be safe to call when nothing is playing.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Segment is a chunk of recognised speech. Interim segments may be revised
// later and are not recorded.
type Segment struct {
	Text  string
	Final bool
}

// Transcriber streams recognised speech until ctx is done or the input ends.
type Transcriber interface {
	Transcribe(ctx context.Context) (<-chan Segment, error)
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(context.Context, string) error { return nil }
func (nopSpeaker) Cancel()                             {}

// WriterSpeaker prints questions instead of reading them out. It is the
// speaker of the terminal interview.
type WriterSpeaker struct {
	w io.Writer
}

func NewWriterSpeaker(w io.Writer) *WriterSpeaker {
	return &WriterSpeaker{w: w}
}

func (s *WriterSpeaker) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.w, text)
	return err
}

func (s *WriterSpeaker) Cancel() {}

// LineTranscriber treats every non-empty line of a reader as a final segment.
// An empty line after some text ends the answer: the channel is closed and
// the next Transcribe call continues with the following line. It backs
// dictation in the terminal, where the reader is stdin.
type LineTranscriber struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

func NewLineTranscriber(r io.Reader) *LineTranscriber {
	return &LineTranscriber{scanner: bufio.NewScanner(r)}
}

func (l *LineTranscriber) Transcribe(ctx context.Context) (<-chan Segment, error) {
	out := make(chan Segment)

	go func() {
		defer close(out)

		l.mu.Lock()
		defer l.mu.Unlock()

		started := false
		for l.scanner.Scan() {
			line := strings.TrimSpace(l.scanner.Text())
			if line == "" {
				if started {
					return
				}
				continue
			}
			started = true
			select {
			case out <- Segment{Text: line, Final: true}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
