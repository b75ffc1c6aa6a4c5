package echofriend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRMS(t *testing.T) {
	assert.Zero(t, CalculateRMS(nil))
	assert.Zero(t, CalculateRMS([]int16{0, 0, 0}))

	// A full-scale square wave has RMS equal to its amplitude.
	full := CalculateRMS([]int16{32767, -32767, 32767, -32767})
	assert.InDelta(t, 1.0, full, 0.001)
}

func TestPeakAmplitude(t *testing.T) {
	assert.Zero(t, PeakAmplitude(nil))
	assert.InDelta(t, 1.0, PeakAmplitude([]int16{5, -32768, 7}), 0.001)
	assert.InDelta(t, 0.5, PeakAmplitude([]int16{16384, -100}), 0.001)
}

func TestIsLikelySilence(t *testing.T) {
	assert.True(t, IsLikelySilence([]int16{0, 1, -1, 0}))

	loud := make([]int16, 256)
	for i := range loud {
		loud[i] = 8000
	}
	assert.False(t, IsLikelySilence(loud))
}
