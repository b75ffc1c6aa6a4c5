package echofriend

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineInputReadsLinesInOrder(t *testing.T) {
	input := NewLineInput(strings.NewReader("first\nsecond\n"))

	line, err := input.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "first\n", line)

	line, err = input.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second\n", line)

	_, err = input.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineInputDeliversFinalUnterminatedLine(t *testing.T) {
	input := NewLineInput(strings.NewReader("y"))

	line, err := input.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "y", line)

	_, err = input.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEnterTriggerStartAndStop(t *testing.T) {
	pr, pw := io.Pipe()
	trigger := NewEnterTrigger(NewLineInput(pr))

	started := make(chan error, 1)
	go func() { started <- trigger.WaitForStart() }()

	assert.False(t, trigger.IsActive())

	// Start line arms the trigger.
	_, err := pw.Write([]byte("\n"))
	require.NoError(t, err)
	require.NoError(t, <-started)
	assert.True(t, trigger.IsActive())

	// Stop line clears it on the next poll.
	_, err = pw.Write([]byte("\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !trigger.IsActive() },
		time.Second, 5*time.Millisecond)
}

func TestEnterTriggerRearmsForNextTurn(t *testing.T) {
	trigger := NewEnterTrigger(NewLineInput(strings.NewReader("\n\n\n\n")))

	for turn := 0; turn < 2; turn++ {
		require.NoError(t, trigger.WaitForStart())
		assert.True(t, trigger.IsActive())
		require.Eventually(t, func() bool { return !trigger.IsActive() },
			time.Second, 5*time.Millisecond)
	}
}

func TestEnterTriggerWaitFailsOnClosedInput(t *testing.T) {
	trigger := NewEnterTrigger(NewLineInput(strings.NewReader("")))

	err := trigger.WaitForStart()
	require.Error(t, err)
	assert.True(t, IsErrorCode(err, ErrCodeCaptureDevice))
	assert.False(t, trigger.IsActive())
}

func TestEnterTriggerClosedInputStopsRecording(t *testing.T) {
	trigger := NewEnterTrigger(NewLineInput(strings.NewReader("\n")))

	require.NoError(t, trigger.WaitForStart())
	require.Eventually(t, func() bool { return !trigger.IsActive() },
		time.Second, 5*time.Millisecond)
}

func TestEnterTriggerCancelDisarms(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	trigger := NewEnterTrigger(NewLineInput(pr))

	go pw.Write([]byte("\n"))
	require.NoError(t, trigger.WaitForStart())
	require.True(t, trigger.IsActive())

	trigger.Cancel()
	assert.False(t, trigger.IsActive())
}

// An aborted capture must leave the shared input untouched: the next line the
// user types belongs to the turn loop's prompt, not to a leftover stop read.
func TestCaptureAbortLeavesNextLineForCaller(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	input := NewLineInput(pr)
	trigger := NewEnterTrigger(input)

	stream := &scriptedStream{startErr: errors.New("device busy")}
	recorder := newTestRecorder(t, trigger, stream)

	go pw.Write([]byte("\n")) // arm the trigger
	_, err := recorder.Capture(filepath.Join(t.TempDir(), "clip.wav"))
	require.Error(t, err)
	assert.False(t, trigger.IsActive())

	// The retry answer typed after the failure reaches the caller intact.
	go pw.Write([]byte("y\n"))
	answer, err := input.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "y\n", answer)
}
