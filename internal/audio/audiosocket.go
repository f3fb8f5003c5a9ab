package audio

import (
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/CyCoreSystems/audiosocket"
)

// SocketSource accepts one AudioSocket connection (Asterisk channel or any
// remote feed speaking the protocol) and treats its signed-linear payloads as
// capture frames. Useful when the sanctuary microphone is on another machine.
type SocketSource struct {
	addr  string
	queue *FrameQueue

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

func NewSocketSource(addr string, queue *FrameQueue) *SocketSource {
	return &SocketSource{addr: addr, queue: queue}
}

func (s *SocketSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("audiosocket source already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(listener)

	log.Printf("AudioSocket source listening on %s", s.addr)
	return nil
}

func (s *SocketSource) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			// Listener closed by Stop.
			return
		}
		s.handleConnection(conn)
	}
}

func (s *SocketSource) handleConnection(conn net.Conn) {
	defer conn.Close()

	id, err := audiosocket.GetID(conn)
	if err != nil {
		log.Printf("AudioSocket: failed to get ID from %s: %v", conn.RemoteAddr(), err)
		return
	}
	log.Printf("AudioSocket feed %s connected from %s", id, conn.RemoteAddr())

	for {
		msg, err := audiosocket.NextMessage(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("AudioSocket feed %s: read error: %v", id, err)
			}
			return
		}

		switch msg.Kind() {
		case audiosocket.KindSlin:
			payload := msg.Payload()
			if len(payload) == 0 {
				continue
			}
			frame := make([]byte, len(payload))
			copy(frame, payload)
			s.queue.Push(frame)

		case audiosocket.KindHangup:
			log.Printf("AudioSocket feed %s: hangup", id)
			return

		case audiosocket.KindError:
			log.Printf("AudioSocket feed %s: error code %d", id, msg.ErrorCode())
			return
		}
	}
}

func (s *SocketSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	err := listener.Close()
	s.wg.Wait()
	log.Printf("AudioSocket source stopped")
	return err
}
