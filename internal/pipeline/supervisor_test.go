package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openpulpit/sermoncast/internal/audio"
	"github.com/openpulpit/sermoncast/internal/config"
	"github.com/openpulpit/sermoncast/internal/recognizer"
)

// sessionTrace records the order of stream lifecycle events across fakes.
type sessionTrace struct {
	mu     sync.Mutex
	events []string
}

func (tr *sessionTrace) add(ev string) {
	tr.mu.Lock()
	tr.events = append(tr.events, ev)
	tr.mu.Unlock()
}

func (tr *sessionTrace) snapshot() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string{}, tr.events...)
}

// fakeStream is a scripted recognition stream: its results channel is
// pre-seeded and already closed, and Err returns the scripted outcome.
type fakeStream struct {
	name    string
	trace   *sessionTrace
	results chan recognizer.Result
	err     error
	sent    int
	mu      sync.Mutex
}

func newFakeStream(err error, results ...recognizer.Result) *fakeStream {
	ch := make(chan recognizer.Result, len(results))
	for _, r := range results {
		ch <- r
	}
	close(ch)
	return &fakeStream{results: ch, err: err}
}

func (s *fakeStream) Send(frame []byte) error {
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Results() <-chan recognizer.Result { return s.results }
func (s *fakeStream) Err() error                        { return s.err }

func (s *fakeStream) CloseSend() error {
	if s.trace != nil {
		s.trace.add("close " + s.name)
	}
	return nil
}

// fakeRecognizer hands out scripted streams in order and cancels the run
// once the script is exhausted.
type fakeRecognizer struct {
	mu      sync.Mutex
	streams []*fakeStream
	opens   int
	cancel  context.CancelFunc
	trace   *sessionTrace
}

func (r *fakeRecognizer) OpenStream(ctx context.Context) (recognizer.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opens >= len(r.streams) {
		if r.cancel != nil {
			r.cancel()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("script exhausted")
	}
	stream := r.streams[r.opens]
	r.opens++
	if r.trace != nil {
		r.trace.add("open " + stream.name)
	}
	return stream, nil
}

func (r *fakeRecognizer) Close() error { return nil }

func (r *fakeRecognizer) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

func newTestSupervisor(rec *fakeRecognizer, pause *PauseController, writer *stubWriter) *Supervisor {
	router := NewTranscriptRouter(RouterConfig{
		Source:     testSource,
		Targets:    []config.Language{testSpanish},
		Translator: &stubTranslator{},
		Writer:     writer,
	})
	return NewSupervisor(SupervisorConfig{
		Queue:          audio.NewFrameQueue(8),
		Pause:          pause,
		Recognizer:     rec,
		Router:         router,
		FeedTimeout:    20 * time.Millisecond,
		PausedPoll:     5 * time.Millisecond,
		RestartBackoff: time.Millisecond,
	})
}

func TestSupervisorReopensExpiredStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{
		streams: []*fakeStream{
			newFakeStream(recognizer.ErrStreamExpired),
			newFakeStream(nil),
		},
		cancel: cancel,
	}
	sup := newTestSupervisor(rec, activeController(), &stubWriter{})

	if err := sup.Run(ctx); err != nil {
		t.Fatalf("expired streams should be supervised, not fatal: %v", err)
	}
	if rec.openCount() != 2 {
		t.Errorf("opened %d streams, want 2 (original plus restart)", rec.openCount())
	}
}

func TestSupervisorRoutesResultsAcrossRestarts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{
		streams: []*fakeStream{
			newFakeStream(recognizer.ErrStreamExpired,
				recognizer.Result{Transcript: "first sentence", IsFinal: true}),
			newFakeStream(nil,
				recognizer.Result{Transcript: "second sentence", IsFinal: true}),
		},
		cancel: cancel,
	}
	writer := &stubWriter{}
	sup := newTestSupervisor(rec, activeController(), writer)

	if err := sup.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(writer.segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(writer.segments))
	}
	if writer.segments[0].Seq != 1 || writer.segments[1].Seq != 2 {
		t.Errorf("sequence must survive restarts, got %d then %d",
			writer.segments[0].Seq, writer.segments[1].Seq)
	}
}

func TestSupervisorRetiresPumpBeforeReopening(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trace := &sessionTrace{}
	first := newFakeStream(recognizer.ErrStreamExpired)
	first.name, first.trace = "one", trace
	second := newFakeStream(nil)
	second.name, second.trace = "two", trace

	rec := &fakeRecognizer{streams: []*fakeStream{first, second}, cancel: cancel, trace: trace}
	router := NewTranscriptRouter(RouterConfig{
		Source:     testSource,
		Targets:    []config.Language{testSpanish},
		Translator: &stubTranslator{},
		Writer:     &stubWriter{},
	})
	sup := NewSupervisor(SupervisorConfig{
		Queue:      audio.NewFrameQueue(8),
		Pause:      activeController(),
		Recognizer: rec,
		Router:     router,
		// Long enough that only session teardown, not a queue timeout,
		// can end each pump.
		FeedTimeout:    30 * time.Second,
		PausedPoll:     5 * time.Millisecond,
		RestartBackoff: time.Millisecond,
	})

	if err := sup.Run(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"open one", "close one", "open two", "close two"}
	got := trace.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stale pump outlived its session: events = %v, want %v", got, want)
		}
	}
}

func TestSupervisorHaltsOnAuthError(t *testing.T) {
	rec := &fakeRecognizer{
		streams: []*fakeStream{
			newFakeStream(errors.New("could not load credential file")),
		},
	}
	sup := newTestSupervisor(rec, activeController(), &stubWriter{})

	err := sup.Run(context.Background())
	if err == nil {
		t.Fatal("auth failures must halt the supervisor")
	}
	if rec.openCount() != 1 {
		t.Errorf("opened %d streams after auth failure, want no retries", rec.openCount())
	}
}

func TestSupervisorHaltsOnUnknownError(t *testing.T) {
	rec := &fakeRecognizer{
		streams: []*fakeStream{
			newFakeStream(errors.New("internal provider failure")),
		},
	}
	sup := newTestSupervisor(rec, activeController(), &stubWriter{})

	if err := sup.Run(context.Background()); err == nil {
		t.Fatal("unclassified stream errors must halt the supervisor")
	}
}

func TestSupervisorOpensNoStreamsWhilePaused(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{streams: []*fakeStream{newFakeStream(nil)}}
	pause := NewPauseController() // starts paused
	sup := newTestSupervisor(rec, pause, &stubWriter{})

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if rec.openCount() != 0 {
		t.Errorf("opened %d streams while paused, want 0", rec.openCount())
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestSupervisorDrainsQueueAfterPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{streams: []*fakeStream{newFakeStream(nil)}, cancel: cancel}
	pause := NewPauseController()
	sup := newTestSupervisor(rec, pause, &stubWriter{})

	// Audio arriving during the initial pause must never reach a stream.
	sup.cfg.Queue.Push([]byte{1})
	sup.cfg.Queue.Push([]byte{2})

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	pause.Resume()

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if n := sup.cfg.Queue.Len(); n != 0 {
		t.Errorf("%d stale frames left after resume", n)
	}
	if rec.streams[0].sent != 0 {
		t.Errorf("stream received %d stale frames, want 0", rec.streams[0].sent)
	}
}
