package echofriend

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Player renders a WAV file to the default output device, blocking the caller
// until the last sample has been written. A missing or unusable playback
// backend is reported as PLAYBACK_UNAVAILABLE so callers can degrade to
// "file saved, play it yourself" instead of failing the turn.
type Player struct {
	config  *Config
	logger  *EchoLogger
	state   PlaybackState
	mu      sync.Mutex // serializes Play calls
	stateMu sync.Mutex
}

const defaultPlaybackFrames = 1024

// playbackFrames clamps a non-positive configured buffer size; a zero-length
// chunk would never advance the playback loop.
func playbackFrames(configured int) int {
	if configured < 1 {
		return defaultPlaybackFrames
	}
	return configured
}

func NewPlayer(config *Config) *Player {
	return &Player{
		config: config,
		logger: GetGlobalLogger().WithComponent("Player"),
		state:  IdlePlayback,
	}
}

// Play decodes the WAV file at path and writes it to the output device in
// buffer-sized chunks. It returns once playback has completed.
func (p *Player) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	samples, sampleRate, channels, err := ReadWAVFile(path)
	if err != nil {
		p.setState(ErrorPlayback)
		return WrapError(err, ErrCodePlaybackDevice)
	}
	if len(samples) == 0 {
		return nil
	}

	frames := playbackFrames(p.config.BufferSize)
	out := make([]int16, frames*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), frames, out)
	if err != nil {
		p.setState(ErrorPlayback)
		return NewPlaybackUnavailableError(err.Error()).AddDetail("path", path)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		p.setState(ErrorPlayback)
		return NewPlaybackUnavailableError(err.Error()).AddDetail("path", path)
	}
	p.setState(PlayingPlayback)

	p.logger.LogAudioEvent("playback_started", map[string]interface{}{
		"path":        path,
		"sample_rate": sampleRate,
		"samples":     len(samples),
	})

	for offset := 0; offset < len(samples); offset += len(out) {
		n := copy(out, samples[offset:])
		// Pad the final chunk with silence
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		if err := stream.Write(); err != nil {
			// Underflow still advances playback; other errors abort
			if err == portaudio.OutputUnderflowed {
				p.logger.Debug("Output underflow during playback")
				continue
			}
			if stopErr := stream.Stop(); stopErr != nil {
				p.logger.WithError(stopErr).Warn("Failed to stop playback stream")
			}
			p.setState(ErrorPlayback)
			return NewPlaybackDeviceError(err.Error()).AddDetail("path", path)
		}
	}

	if err := stream.Stop(); err != nil {
		p.logger.WithError(err).Warn("Failed to stop playback stream")
	}
	p.setState(IdlePlayback)

	p.logger.LogAudioEvent("playback_completed", map[string]interface{}{"path": path})
	return nil
}

// State returns the current playback state.
func (p *Player) State() PlaybackState {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

func (p *Player) setState(state PlaybackState) {
	p.stateMu.Lock()
	p.state = state
	p.stateMu.Unlock()
}
