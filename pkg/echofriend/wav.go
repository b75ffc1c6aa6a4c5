package echofriend

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Uncompressed 16-bit PCM WAV encoding and decoding. Capture files and
// synthesized replies both go through this format so the portaudio playback
// path never needs a transcoder.

const wavFormatPCM = 1

// EncodeWAV serializes int16 samples into a complete RIFF/WAVE byte stream.
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	buf := new(bytes.Buffer)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(channels*2))            // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))                    // bits per sample

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// WriteWAVFile writes int16 samples as a WAV file at path.
func WriteWAVFile(path string, samples []int16, sampleRate, channels int) error {
	if err := os.WriteFile(path, EncodeWAV(samples, sampleRate, channels), 0o644); err != nil {
		return WrapError(err, ErrCodeAudioFile)
	}
	return nil
}

// DecodeWAV parses a RIFF/WAVE byte stream and returns its PCM16 samples.
// Only uncompressed 16-bit PCM is supported.
func DecodeWAV(data []byte) (samples []int16, sampleRate, channels int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, NewAudioFileError("not a RIFF/WAVE stream")
	}

	var fmtSeen bool
	var bitsPerSample int
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body // tolerate truncated final chunk sizes
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, 0, NewAudioFileError("malformed fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != wavFormatPCM {
				return nil, 0, 0, NewAudioFileError(fmt.Sprintf("unsupported WAV format %d, want PCM", format))
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			fmtSeen = true
		case "data":
			if !fmtSeen {
				return nil, 0, 0, NewAudioFileError("data chunk before fmt chunk")
			}
			if bitsPerSample != 16 {
				return nil, 0, 0, NewAudioFileError(fmt.Sprintf("unsupported bit depth %d, want 16", bitsPerSample))
			}
			samples = make([]int16, chunkSize/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(data[body+i*2 : body+i*2+2]))
			}
			return samples, sampleRate, channels, nil
		}

		// Chunks are word-aligned
		if chunkSize%2 == 1 {
			chunkSize++
		}
		pos = body + chunkSize
	}

	return nil, 0, 0, NewAudioFileError("no data chunk found")
}

// ReadWAVFile reads and decodes a WAV file from path.
func ReadWAVFile(path string) (samples []int16, sampleRate, channels int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, WrapError(err, ErrCodeAudioFile)
	}
	return DecodeWAV(data)
}
