package echofriend

import "math"

// Sample-level helpers for captured PCM16 audio.

// CalculateRMS returns the root mean square level of the samples, normalized
// to [0, 1].
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// PeakAmplitude returns the largest absolute sample value, normalized to
// [0, 1].
func PeakAmplitude(samples []int16) float64 {
	var peak int32
	for _, s := range samples {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return float64(peak) / 32768.0
}

// IsLikelySilence reports whether the clip is too quiet to contain speech.
// The threshold sits below normal room noise on consumer microphones.
func IsLikelySilence(samples []int16) bool {
	return CalculateRMS(samples) < 0.003
}
