package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openpulpit/sermoncast/internal/config"
	"github.com/openpulpit/sermoncast/internal/recognizer"
	"github.com/openpulpit/sermoncast/internal/translator"
)

// RouterConfig wires the router's downstream consumers. Writer, Publisher
// and Metrics may be nil when the corresponding sink is disabled.
type RouterConfig struct {
	Source         config.Language
	Targets        []config.Language
	DisplayTargets []config.Language
	Translator     translator.Translator
	Glossary       *translator.Glossary
	Display        Display
	Writer         SegmentWriter
	Publisher      Publisher
	Metrics        Metrics

	SplitThreshold int
	SplitMinWords  int
}

// TranscriptRouter turns recognizer results into display updates and
// finalized segments. Interim results only touch the live-typing line; a
// final result is split into chunks, each chunk translated to every target
// and committed with the next sequence number. One router serves the whole
// session, so sequence numbers survive stream restarts.
type TranscriptRouter struct {
	cfg RouterConfig
	seq int
}

func NewTranscriptRouter(cfg RouterConfig) *TranscriptRouter {
	if cfg.SplitThreshold <= 0 {
		cfg.SplitThreshold = 30
	}
	if cfg.SplitMinWords <= 0 {
		cfg.SplitMinWords = 10
	}
	return &TranscriptRouter{cfg: cfg}
}

// Seq returns the number of segments committed so far.
func (r *TranscriptRouter) Seq() int {
	return r.seq
}

// Handle processes one recognizer result. Called from the supervisor's
// consume loop only, so it needs no locking of its own.
func (r *TranscriptRouter) Handle(ctx context.Context, res recognizer.Result) {
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.AddTranscriptResult(res.Transcript, res.IsFinal)
	}
	if !res.IsFinal {
		if res.Transcript != "" && r.cfg.Display != nil {
			r.cfg.Display.ShowInterim(res.Transcript)
		}
		return
	}
	if res.Transcript == "" {
		return
	}

	for _, chunk := range SplitText(res.Transcript, r.cfg.SplitThreshold, r.cfg.SplitMinWords) {
		r.commit(ctx, chunk, res.Confidence)
	}
}

// commit translates one chunk to every target and pushes the finished
// segment to all sinks. The segment is committed even when some targets
// fail: the failed entries carry an error marker instead of text.
func (r *TranscriptRouter) commit(ctx context.Context, text string, confidence float64) {
	r.seq++
	seg := Segment{
		Seq:          r.seq,
		SourceCode:   r.cfg.Source.Code,
		Text:         text,
		Confidence:   confidence,
		Timestamp:    time.Now(),
		Translations: r.translateAll(ctx, text),
	}

	if r.cfg.Display != nil {
		primary, secondary := r.displayPair(seg)
		r.cfg.Display.ShowSegment(seg.Text, primary, secondary)
	}
	if r.cfg.Writer != nil {
		if err := r.cfg.Writer.WriteSegment(seg); err != nil {
			log.Printf("Failed to write segment %d: %v", seg.Seq, err)
		}
	}
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.AddSegment()
	}
	if r.cfg.Publisher != nil {
		if err := r.cfg.Publisher.PublishSegment(ctx, seg); err != nil {
			log.Printf("Failed to publish segment %d: %v", seg.Seq, err)
		}
	}
}

// translateAll fans the chunk out to every target in parallel. The result
// map always holds one entry per target, keyed by language name.
func (r *TranscriptRouter) translateAll(ctx context.Context, text string) map[string]string {
	results := make(map[string]string, len(r.cfg.Targets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, target := range r.cfg.Targets {
		wg.Add(1)
		go func(target config.Language) {
			defer wg.Done()
			translated, err := r.cfg.Translator.Translate(ctx, text, r.cfg.Source.Code, target.Code)
			if err != nil {
				log.Printf("Translation to %s failed: %v", target.Name, err)
				translated = fmt.Sprintf("[Translation error: %v]", err)
			} else if r.cfg.Glossary != nil {
				translated = r.cfg.Glossary.Apply(target.Base(), translated)
			}
			mu.Lock()
			results[target.Name] = translated
			mu.Unlock()
		}(target)
	}
	wg.Wait()
	return results
}

func (r *TranscriptRouter) displayPair(seg Segment) (primary, secondary string) {
	if len(r.cfg.DisplayTargets) > 0 {
		primary = seg.Translations[r.cfg.DisplayTargets[0].Name]
	}
	if len(r.cfg.DisplayTargets) > 1 {
		secondary = seg.Translations[r.cfg.DisplayTargets[1].Name]
	}
	return primary, secondary
}
