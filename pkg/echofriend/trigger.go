package echofriend

import (
	"bufio"
	"io"
	"sync/atomic"
)

// TriggerSource abstracts the manual start/stop trigger for recording, so the
// Recorder loop can be driven without real keyboard input.
type TriggerSource interface {
	// WaitForStart blocks until the user arms the trigger.
	WaitForStart() error
	// IsActive reports whether the trigger is still held. The Recorder polls
	// this between frame reads and stops capturing as soon as it turns false.
	IsActive() bool
	// Cancel disarms the trigger after an aborted capture so no stop input
	// is owed once the turn has already failed.
	Cancel()
}

type lineResult struct {
	text string
	err  error
}

// LineInput serializes line reads from one underlying reader. The turn loop's
// prompts and the recording trigger share a terminal; routing every read
// through a single goroutine keeps exactly one reader on the stream.
type LineInput struct {
	lines chan lineResult
}

func NewLineInput(r io.Reader) *LineInput {
	li := &LineInput{lines: make(chan lineResult)}
	br := bufio.NewReader(r)
	go func() {
		defer close(li.lines)
		for {
			text, err := br.ReadString('\n')
			if err != nil {
				if text != "" {
					li.lines <- lineResult{text: text}
				}
				return
			}
			li.lines <- lineResult{text: text}
		}
	}()
	return li
}

// ReadLine blocks until the next input line arrives, including its trailing
// newline. Returns io.EOF once the underlying reader is exhausted.
func (li *LineInput) ReadLine() (string, error) {
	res, ok := <-li.lines
	if !ok {
		return "", io.EOF
	}
	return res.text, res.err
}

// EnterTrigger is a line-based TriggerSource: one ENTER starts the recording,
// the next ENTER stops it. Terminals deliver key releases unreliably across
// platforms, so press-and-hold is emulated with a start line and a stop line.
// The stop line is consumed inside IsActive rather than by a background read,
// so an aborted capture never leaves a read pending on the shared input.
type EnterTrigger struct {
	input  *LineInput
	active atomic.Bool
}

func NewEnterTrigger(input *LineInput) *EnterTrigger {
	return &EnterTrigger{input: input}
}

func (t *EnterTrigger) WaitForStart() error {
	if _, err := t.input.ReadLine(); err != nil {
		return WrapError(err, ErrCodeCaptureDevice)
	}
	t.active.Store(true)
	return nil
}

// IsActive polls for the stop line without blocking. Closed input counts as a
// stop, so recording ends cleanly when stdin goes away mid-capture.
func (t *EnterTrigger) IsActive() bool {
	if !t.active.Load() {
		return false
	}
	select {
	case <-t.input.lines:
		t.active.Store(false)
		return false
	default:
		return true
	}
}

func (t *EnterTrigger) Cancel() {
	t.active.Store(false)
}
