package audio

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// FileSource plays a 16-bit PCM WAV file into the queue at real-time pace,
// for rehearsing a session without a microphone. The file's sample rate must
// match the configured format.
type FileSource struct {
	path   string
	format Format
	queue  *FrameQueue

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	finishedMu sync.Mutex
	finished   bool
}

func NewFileSource(path string, format Format, queue *FrameQueue) *FileSource {
	return &FileSource{path: path, format: format, queue: queue}
}

func (f *FileSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return fmt.Errorf("file source already started")
	}

	pcm, err := loadWAVData(f.path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", f.path, err)
	}

	f.running = true
	f.done = make(chan struct{})
	f.wg.Add(1)
	go f.playLoop(pcm)

	log.Printf("File source started: %s (%.1f seconds)",
		f.path, float64(len(pcm))/float64(f.format.SampleRate*2))
	return nil
}

func (f *FileSource) playLoop(pcm []byte) {
	defer f.wg.Done()

	frameBytes := f.format.BytesPerFrame()
	frameDur := time.Duration(f.format.FrameSamples) * time.Second / time.Duration(f.format.SampleRate)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	for offset := 0; offset < len(pcm); offset += frameBytes {
		select {
		case <-f.done:
			return
		case <-ticker.C:
		}

		end := offset + frameBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := make([]byte, end-offset)
		copy(frame, pcm[offset:end])
		f.queue.Push(frame)
	}

	f.finishedMu.Lock()
	f.finished = true
	f.finishedMu.Unlock()
	log.Printf("File source finished: %s", f.path)
}

// Finished reports whether the entire file has been pushed.
func (f *FileSource) Finished() bool {
	f.finishedMu.Lock()
	defer f.finishedMu.Unlock()
	return f.finished
}

func (f *FileSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return nil
	}
	f.running = false
	close(f.done)
	f.wg.Wait()
	return nil
}

// loadWAVData reads a WAV file and returns the raw PCM payload.
func loadWAVData(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header := make([]byte, 44)
	if _, err := io.ReadFull(file, header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	// Locate the data chunk; most files have it right after the fmt chunk.
	dataStart := 44
	for i := 12; i < len(header)-4; i++ {
		if string(header[i:i+4]) == "data" {
			dataStart = i + 8
			break
		}
	}

	if _, err := file.Seek(int64(dataStart), 0); err != nil {
		return nil, fmt.Errorf("failed to seek to data chunk: %w", err)
	}
	return io.ReadAll(file)
}
