package echofriend

import (
	"fmt"
	"os"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Frame-read errors are skipped until this many occur back to back, at which
// point the device is considered unusable.
const maxConsecutiveReadErrors = 10

// CaptureStream is the minimal surface of a microphone input stream. The
// portaudio-backed implementation is swapped for a fake in tests.
type CaptureStream interface {
	Start() error
	Stop() error
	// ReadFrame blocks until one buffer of samples is available and returns it.
	ReadFrame() ([]int16, error)
	Close() error
}

type portaudioCapture struct {
	stream *portaudio.Stream
	buf    []int16
}

func openPortaudioCapture(config *Config) (CaptureStream, error) {
	buf := make([]int16, config.BufferSize*config.Channels)

	if config.InputDeviceID != nil {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, err
		}
		id := *config.InputDeviceID
		if id < 0 || id >= len(devices) {
			return nil, fmt.Errorf("input device %d not found", id)
		}
		params := portaudio.LowLatencyParameters(devices[id], nil)
		params.Input.Channels = config.Channels
		params.SampleRate = float64(config.SampleRate)
		params.FramesPerBuffer = config.BufferSize
		stream, err := portaudio.OpenStream(params, buf)
		if err != nil {
			return nil, err
		}
		return &portaudioCapture{stream: stream, buf: buf}, nil
	}

	stream, err := portaudio.OpenDefaultStream(config.Channels, 0, float64(config.SampleRate), config.BufferSize, buf)
	if err != nil {
		return nil, err
	}
	return &portaudioCapture{stream: stream, buf: buf}, nil
}

func (pc *portaudioCapture) Start() error {
	return pc.stream.Start()
}

func (pc *portaudioCapture) Stop() error {
	return pc.stream.Stop()
}

func (pc *portaudioCapture) ReadFrame() ([]int16, error) {
	if err := pc.stream.Read(); err != nil {
		return nil, err
	}
	frame := make([]int16, len(pc.buf))
	copy(frame, pc.buf)
	return frame, nil
}

func (pc *portaudioCapture) Close() error {
	return pc.stream.Close()
}

// Recorder captures one bounded clip per call, keyed to the TriggerSource:
// capture runs exactly while the trigger is held. The underlying device stream
// is opened once and reused across turns; Close releases it exactly once.
type Recorder struct {
	config        *Config
	trigger       TriggerSource
	stream        CaptureStream
	state         RecordingState
	logger        *EchoLogger
	ownsPortaudio bool
	closeOnce     sync.Once
	mu            sync.Mutex // serializes Capture calls
	stateMu       sync.Mutex
}

func NewRecorder(config *Config, trigger TriggerSource) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, WrapError(err, ErrCodeCaptureDevice)
	}
	stream, err := openPortaudioCapture(config)
	if err != nil {
		portaudio.Terminate()
		return nil, WrapError(err, ErrCodeCaptureDevice)
	}
	return newRecorderWithStream(config, trigger, stream, true), nil
}

func newRecorderWithStream(config *Config, trigger TriggerSource, stream CaptureStream, ownsPortaudio bool) *Recorder {
	return &Recorder{
		config:        config,
		trigger:       trigger,
		stream:        stream,
		state:         IdleRecording,
		logger:        GetGlobalLogger().WithComponent("Recorder"),
		ownsPortaudio: ownsPortaudio,
	}
}

// Capture blocks until the trigger is armed, records while it is held, and
// writes the accumulated frames as an uncompressed WAV file at destPath.
// Returns the written path, or an error when the device fails or nothing was
// captured (in which case no file is written).
func (r *Recorder) Capture(destPath string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setState(WaitingRecording)
	if err := r.trigger.WaitForStart(); err != nil {
		r.setState(ErrorRecording)
		return "", WrapError(err, ErrCodeCaptureDevice)
	}

	if err := r.stream.Start(); err != nil {
		r.trigger.Cancel()
		r.setState(ErrorRecording)
		return "", NewCaptureDeviceError(err.Error())
	}
	r.setState(Recording)

	var samples []int16
	consecutiveErrors := 0
	for r.trigger.IsActive() {
		frame, err := r.stream.ReadFrame()
		if err != nil {
			consecutiveErrors++
			r.logger.WithError(err).Warnf("Frame read failed (%d in a row), skipping", consecutiveErrors)
			if consecutiveErrors >= maxConsecutiveReadErrors {
				if stopErr := r.stream.Stop(); stopErr != nil {
					r.logger.WithError(stopErr).Warn("Failed to stop capture stream")
				}
				r.trigger.Cancel()
				r.setState(ErrorRecording)
				return "", NewCaptureDeviceError("input device became unusable").
					AddDetail("consecutive_errors", consecutiveErrors)
			}
			continue
		}
		consecutiveErrors = 0
		samples = append(samples, frame...)
	}

	if err := r.stream.Stop(); err != nil {
		r.logger.WithError(err).Warn("Failed to stop capture stream")
	}
	r.setState(IdleRecording)

	if len(samples) == 0 {
		return "", NewCaptureEmptyError("no audio was recorded, hold the trigger longer")
	}

	if err := WriteWAVFile(destPath, samples, r.config.SampleRate, r.config.Channels); err != nil {
		return "", WrapError(err, ErrCodeCaptureDevice)
	}

	duration := float64(len(samples)) / float64(r.config.SampleRate*r.config.Channels)
	fileSize := int64(0)
	if info, err := os.Stat(destPath); err == nil {
		fileSize = info.Size()
	}
	r.logger.LogAudioEvent("capture_saved", map[string]interface{}{
		"path":             destPath,
		"duration_seconds": duration,
		"file_bytes":       fileSize,
		"rms":              CalculateRMS(samples),
	})
	if fileSize < 1000 || IsLikelySilence(samples) {
		r.logger.Warn("Recording is very small. Did you speak?")
	}

	return destPath, nil
}

// State returns the current recording state.
func (r *Recorder) State() RecordingState {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

func (r *Recorder) setState(state RecordingState) {
	r.stateMu.Lock()
	r.state = state
	r.stateMu.Unlock()
}

// Close releases the device stream and the audio subsystem. Safe to call from
// multiple exit paths; the release happens once.
func (r *Recorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.stream.Close()
		if r.ownsPortaudio {
			if termErr := portaudio.Terminate(); err == nil {
				err = termErr
			}
		}
		r.logger.Info("Recorder closed")
	})
	return err
}
