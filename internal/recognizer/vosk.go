package recognizer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// VoskRecognizer streams audio to a self-hosted Vosk websocket server. No
// cloud account required, but only the server's loaded model language is
// recognized and no punctuation or boost phrases apply.
type VoskRecognizer struct {
	config Config
}

func NewVoskRecognizer(config Config) (*VoskRecognizer, error) {
	if config.VoskServerURL == "" {
		return nil, fmt.Errorf("Vosk server URL is required")
	}
	return &VoskRecognizer{config: config}, nil
}

func (v *VoskRecognizer) OpenStream(ctx context.Context) (Stream, error) {
	url := fmt.Sprintf("%s/ws?sample_rate=%d", v.config.VoskServerURL, v.config.SampleRate)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Vosk server: %w", err)
	}

	vs := &voskStream{
		conn:    conn,
		results: make(chan Result, 100),
	}
	go vs.receiveLoop()
	return vs, nil
}

func (v *VoskRecognizer) Close() error {
	return nil
}

type voskStream struct {
	conn    *websocket.Conn
	results chan Result
	eofSent atomic.Bool

	writeMu sync.Mutex
	mu      sync.Mutex
	err     error
}

type voskMessage struct {
	Text   string `json:"text"`
	Result []struct {
		Word string  `json:"word"`
		Conf float64 `json:"conf"`
	} `json:"result"`
	Partial string `json:"partial"`
}

func (vs *voskStream) Send(frame []byte) error {
	vs.writeMu.Lock()
	defer vs.writeMu.Unlock()
	if err := vs.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("failed to send audio to Vosk: %w", err)
	}
	return nil
}

// receiveLoop reads hypotheses until the server closes the connection. It
// owns the connection teardown: after CloseSend has sent the eof marker the
// server flushes its final hypothesis and closes, so every read error past
// that point is a normal end of stream, not a failure.
func (vs *voskStream) receiveLoop() {
	defer close(vs.results)
	defer vs.conn.Close()
	for {
		var msg voskMessage
		if err := vs.conn.ReadJSON(&msg); err != nil {
			if vs.eofSent.Load() {
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				vs.setErr(err)
				log.Printf("Vosk websocket error: %v", err)
			}
			return
		}

		if msg.Partial != "" {
			vs.results <- Result{Transcript: msg.Partial, IsFinal: false}
		}
		if msg.Text != "" {
			vs.results <- Result{
				Transcript: msg.Text,
				IsFinal:    true,
				Confidence: averageConfidence(msg),
			}
		}
	}
}

func averageConfidence(msg voskMessage) float64 {
	if len(msg.Result) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range msg.Result {
		sum += w.Conf
	}
	return sum / float64(len(msg.Result))
}

func (vs *voskStream) setErr(err error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.err == nil {
		vs.err = err
	}
}

func (vs *voskStream) Err() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.err
}

func (vs *voskStream) Results() <-chan Result {
	return vs.results
}

// CloseSend tells the server no more audio is coming. The connection stays
// open: the server flushes its final hypothesis and then closes, and the
// receive loop delivers everything it sends until then. A read deadline
// bounds the drain in case the server never closes.
func (vs *voskStream) CloseSend() error {
	if vs.eofSent.Swap(true) {
		return nil
	}
	vs.writeMu.Lock()
	defer vs.writeMu.Unlock()
	if err := vs.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof": 1}`)); err != nil {
		return err
	}
	return vs.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
}
