package recognizer

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Result is one recognition engine event. Interim results may still be
// revised; a final result is stable and carries a confidence score.
type Result struct {
	Transcript string
	IsFinal    bool
	Confidence float64
}

// Config holds everything a provider needs to open recognition streams.
// SampleRate and the capture format must match exactly.
type Config struct {
	CredentialsFile string
	LanguageCode    string
	SampleRate      int
	Model           string
	Punctuation     bool
	BoostPhrases    []string
	Boost           float64
	VoskServerURL   string
}

// Recognizer opens streaming recognition sessions against an engine. The
// engine has no cross-session continuity: every stream starts fresh.
type Recognizer interface {
	OpenStream(ctx context.Context) (Stream, error)
	Close() error
}

// Stream is one live recognition session.
type Stream interface {
	// Send pushes one audio frame to the engine.
	Send(frame []byte) error

	// Results delivers engine events until the session ends, then closes.
	Results() <-chan Result

	// Err returns the terminal error once Results has closed; nil means the
	// session ended cleanly.
	Err() error

	// CloseSend tells the engine no more audio is coming; remaining results
	// are still delivered.
	CloseSend() error
}

// ErrStreamExpired marks a recognition session that hit the engine's
// duration limit and should simply be reopened.
var ErrStreamExpired = errors.New("recognition stream expired")

// IsExpired reports whether err is a transient stream timeout/expiry that
// the supervisor recovers from by opening a fresh session.
func IsExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStreamExpired) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.OutOfRange, codes.DeadlineExceeded:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "audio timeout") ||
		strings.Contains(msg, "maximum allowed stream duration")
}

// IsAuthError reports whether err is a credential failure. Never retried.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "credential") || strings.Contains(msg, "unauthenticated")
}
