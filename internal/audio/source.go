package audio

// Source is a continuous capture device feeding fixed-size PCM frames into a
// FrameQueue. Implementations must never block inside the capture path: the
// queue's drop-oldest policy absorbs a slow consumer.
type Source interface {
	// Start begins capture. Frames are pushed into the queue given at
	// construction until Stop is called.
	Start() error

	// Stop halts capture and releases the device. Calling Stop on a source
	// that never started, or twice, is a no-op.
	Stop() error
}

// Format describes the PCM stream every source must produce. The values must
// exactly match the recognizer configuration; a mismatch degrades
// transcription silently rather than failing.
type Format struct {
	SampleRate   int // Hz
	FrameSamples int // samples per frame
	Channels     int // always 1 for the recognizers used here
}

// BytesPerFrame returns the size in bytes of one 16-bit PCM frame.
func (f Format) BytesPerFrame() int {
	return f.FrameSamples * f.Channels * 2
}
