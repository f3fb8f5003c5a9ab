package recognizer

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// GoogleRecognizer streams audio to the Google Cloud Speech-to-Text API.
type GoogleRecognizer struct {
	client *speech.Client
	config Config
}

func NewGoogleRecognizer(ctx context.Context, config Config) (*GoogleRecognizer, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleRecognizer{client: client, config: config}, nil
}

func (g *GoogleRecognizer) OpenStream(ctx context.Context) (Stream, error) {
	stream, err := g.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open recognition stream: %w", err)
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(g.config.SampleRate),
		LanguageCode:               g.config.LanguageCode,
		EnableAutomaticPunctuation: g.config.Punctuation,
		Model:                      g.config.Model,
	}
	if len(g.config.BoostPhrases) > 0 {
		recognitionConfig.SpeechContexts = []*speechpb.SpeechContext{{
			Phrases: g.config.BoostPhrases,
			Boost:   float32(g.config.Boost),
		}}
	}

	// The configuration message must be the first request on the stream.
	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:          recognitionConfig,
				InterimResults:  true,
				SingleUtterance: false,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	gs := &googleStream{
		stream:  stream,
		results: make(chan Result, 100),
	}
	go gs.receiveLoop()
	return gs, nil
}

func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}

type googleStream struct {
	stream  speechpb.Speech_StreamingRecognizeClient
	results chan Result

	mu  sync.Mutex
	err error
}

func (gs *googleStream) Send(frame []byte) error {
	return gs.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: frame,
		},
	})
}

func (gs *googleStream) receiveLoop() {
	defer close(gs.results)
	for {
		resp, err := gs.stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			gs.setErr(err)
			return
		}
		if resp.Error != nil {
			gs.setErr(status.ErrorProto(resp.Error))
			return
		}

		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			if alt.Transcript == "" {
				continue
			}
			gs.results <- Result{
				Transcript: alt.Transcript,
				IsFinal:    result.IsFinal,
				Confidence: float64(alt.Confidence),
			}
		}
	}
}

func (gs *googleStream) setErr(err error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.err == nil {
		gs.err = err
	}
}

func (gs *googleStream) Err() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.err
}

func (gs *googleStream) Results() <-chan Result {
	return gs.results
}

func (gs *googleStream) CloseSend() error {
	return gs.stream.CloseSend()
}
