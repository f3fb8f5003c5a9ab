package audio

import (
	"encoding/binary"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// MicSource captures from a hardware input device via PortAudio.
type MicSource struct {
	format     Format
	deviceHint string
	queue      *FrameQueue

	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []int16
	running bool
	done    chan struct{}
	loop    sync.WaitGroup

	// read fills buffer with the next hardware frame. stream.Read in
	// production; injectable so the capture loop can be tested off-device.
	read func() error
}

// NewMicSource prepares a microphone source. deviceHint selects the input
// device by case-insensitive substring match ("USB", "Focusrite"); empty
// means the system default input.
func NewMicSource(format Format, deviceHint string, queue *FrameQueue) *MicSource {
	return &MicSource{
		format:     format,
		deviceHint: deviceHint,
		queue:      queue,
		buffer:     make([]int16, format.FrameSamples*format.Channels),
	}
}

func (m *MicSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("microphone capture already started")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	device, err := findInputDevice(m.deviceHint)
	if err != nil {
		portaudio.Terminate()
		return err
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = m.format.Channels
	params.SampleRate = float64(m.format.SampleRate)
	params.FramesPerBuffer = m.format.FrameSamples

	stream, err := portaudio.OpenStream(params, m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	m.stream = stream
	m.read = stream.Read
	m.running = true
	m.done = make(chan struct{})
	m.loop.Add(1)
	go m.captureLoop(m.done)

	log.Printf("Audio capture started (device: %s, %d Hz, %d samples/frame)",
		device.Name, m.format.SampleRate, m.format.FrameSamples)
	return nil
}

// captureLoop reads one hardware buffer at a time and hands a copy to the
// queue. The read blocks on the device clock; nothing else here may block.
// The loop must fully exit before Stop releases the stream.
func (m *MicSource) captureLoop(done chan struct{}) {
	defer m.loop.Done()
	for {
		select {
		case <-done:
			return
		default:
		}

		if err := m.read(); err != nil {
			select {
			case <-done:
				return
			default:
			}
			log.Printf("Audio read error: %v", err)
			continue
		}

		frame := make([]byte, len(m.buffer)*2)
		for i, sample := range m.buffer {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(sample))
		}
		m.queue.Push(frame)
	}
}

func (m *MicSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.done)

	// The loop may be mid-read; the device is released only after it exits.
	m.loop.Wait()

	var err error
	if m.stream != nil {
		if stopErr := m.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := m.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.stream = nil
		portaudio.Terminate()
	}

	if dropped := m.queue.Dropped(); dropped > 0 {
		log.Printf("Audio capture stopped (%d frames dropped)", dropped)
	} else {
		log.Printf("Audio capture stopped")
	}
	return err
}

// ListInputDevices returns the names of all available capture devices.
func ListInputDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	var names []string
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

func findInputDevice(hint string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	if hint != "" {
		lowered := strings.ToLower(hint)
		for _, d := range devices {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), lowered) {
				log.Printf("Found input device matching %q: %s", hint, d.Name)
				return d, nil
			}
		}
		log.Printf("No input device matching %q, falling back to default", hint)
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("no default input device: %w", err)
	}
	return device, nil
}
