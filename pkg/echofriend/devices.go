package echofriend

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// AudioDevice represents an audio device
type AudioDevice struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
	IsInput           bool
	IsOutput          bool
	HostAPI           string
}

// AudioDeviceManager enumerates and validates audio devices. It is used by
// the devices CLI commands and by the microphone picker before a session
// starts; the session itself holds its own device stream via the Recorder.
type AudioDeviceManager struct {
	mu      sync.RWMutex
	devices []AudioDevice
	logger  *EchoLogger
}

// NewAudioDeviceManager creates a new audio device manager
func NewAudioDeviceManager() *AudioDeviceManager {
	return &AudioDeviceManager{
		devices: make([]AudioDevice, 0),
		logger:  GetGlobalLogger().WithComponent("AudioDeviceManager"),
	}
}

// Initialize initializes the audio subsystem and refreshes the device list
func (adm *AudioDeviceManager) Initialize() error {
	adm.mu.Lock()
	defer adm.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		adm.logger.WithError(err).Error("Failed to initialize PortAudio")
		return WrapError(err, ErrCodeCaptureDevice)
	}

	if err := adm.refreshDevices(); err != nil {
		adm.logger.WithError(err).Error("Failed to refresh device list")
		return WrapError(err, ErrCodeCaptureDevice)
	}

	adm.logger.WithField("device_count", len(adm.devices)).Info("Audio device manager initialized")
	return nil
}

// Cleanup releases the audio subsystem
func (adm *AudioDeviceManager) Cleanup() {
	adm.mu.Lock()
	defer adm.mu.Unlock()

	if err := portaudio.Terminate(); err != nil {
		adm.logger.WithError(err).Error("Failed to terminate PortAudio")
	}
}

func (adm *AudioDeviceManager) refreshDevices() error {
	adm.devices = make([]AudioDevice, 0)

	defaultInput, err := portaudio.DefaultInputDevice()
	if err != nil {
		adm.logger.WithError(err).Warn("No default input device")
	}

	defaultOutput, err := portaudio.DefaultOutputDevice()
	if err != nil {
		adm.logger.WithError(err).Warn("No default output device")
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	for i, dev := range devices {
		hostAPIName := "Unknown"
		if dev.HostApi != nil {
			hostAPIName = dev.HostApi.Name
		}

		device := AudioDevice{
			ID:                i,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsInput:           dev.MaxInputChannels > 0,
			IsOutput:          dev.MaxOutputChannels > 0,
			HostAPI:           hostAPIName,
		}

		if defaultInput != nil && dev == defaultInput {
			device.IsDefault = true
		}
		if defaultOutput != nil && dev == defaultOutput {
			device.IsDefault = true
		}

		adm.devices = append(adm.devices, device)
	}

	return nil
}

// GetDevices returns all available audio devices
func (adm *AudioDeviceManager) GetDevices() []AudioDevice {
	adm.mu.RLock()
	defer adm.mu.RUnlock()

	devices := make([]AudioDevice, len(adm.devices))
	copy(devices, adm.devices)
	return devices
}

// GetInputDevices returns all input devices
func (adm *AudioDeviceManager) GetInputDevices() []AudioDevice {
	adm.mu.RLock()
	defer adm.mu.RUnlock()

	inputDevices := make([]AudioDevice, 0)
	for _, device := range adm.devices {
		if device.IsInput {
			inputDevices = append(inputDevices, device)
		}
	}
	return inputDevices
}

// GetDeviceByID returns a device by its ID
func (adm *AudioDeviceManager) GetDeviceByID(id int) (*AudioDevice, error) {
	adm.mu.RLock()
	defer adm.mu.RUnlock()

	for _, device := range adm.devices {
		if device.ID == id {
			return &device, nil
		}
	}
	return nil, fmt.Errorf("device with ID %d not found", id)
}

// ValidateDevice validates if a device is suitable as a capture source
func (adm *AudioDeviceManager) ValidateDevice(deviceID, channels int, sampleRate float64) error {
	device, err := adm.GetDeviceByID(deviceID)
	if err != nil {
		return err
	}

	if !device.IsInput {
		return fmt.Errorf("device '%s' is not an input device", device.Name)
	}
	if device.MaxInputChannels < channels {
		return fmt.Errorf("device '%s' supports max %d input channels, requested %d",
			device.Name, device.MaxInputChannels, channels)
	}

	if sampleRate > 0 && device.DefaultSampleRate > 0 {
		ratio := sampleRate / device.DefaultSampleRate
		if ratio < 0.5 || ratio > 2.0 {
			adm.logger.WithField("device_name", device.Name).
				Warnf("Sample rate %.0f Hz differs significantly from device default %.0f Hz",
					sampleRate, device.DefaultSampleRate)
		}
	}

	return nil
}

// GetDeviceInfo returns formatted device information
func (adm *AudioDeviceManager) GetDeviceInfo(deviceID int) (string, error) {
	device, err := adm.GetDeviceByID(deviceID)
	if err != nil {
		return "", err
	}

	info := fmt.Sprintf("Device: %s\n", device.Name)
	info += fmt.Sprintf("  ID: %d\n", device.ID)
	info += fmt.Sprintf("  Host API: %s\n", device.HostAPI)
	info += fmt.Sprintf("  Input Channels: %d\n", device.MaxInputChannels)
	info += fmt.Sprintf("  Output Channels: %d\n", device.MaxOutputChannels)
	info += fmt.Sprintf("  Default Sample Rate: %.1f Hz\n", device.DefaultSampleRate)
	info += fmt.Sprintf("  Is Default: %v\n", device.IsDefault)

	return info, nil
}

// ListInputDevices is a helper that brings the subsystem up just long enough
// to enumerate microphones.
func ListInputDevices() ([]AudioDevice, error) {
	dm := NewAudioDeviceManager()
	if err := dm.Initialize(); err != nil {
		return nil, err
	}
	defer dm.Cleanup()
	return dm.GetInputDevices(), nil
}

// ListAllDevices enumerates every audio device on the host.
func ListAllDevices() ([]AudioDevice, error) {
	dm := NewAudioDeviceManager()
	if err := dm.Initialize(); err != nil {
		return nil, err
	}
	defer dm.Cleanup()
	return dm.GetDevices(), nil
}
