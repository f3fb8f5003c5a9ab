package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/openpulpit/sermoncast/internal/audio"
	"github.com/openpulpit/sermoncast/internal/config"
	"github.com/openpulpit/sermoncast/internal/display"
	"github.com/openpulpit/sermoncast/internal/pipeline"
	"github.com/openpulpit/sermoncast/internal/recognizer"
	"github.com/openpulpit/sermoncast/internal/session"
	"github.com/openpulpit/sermoncast/internal/translator"
)

func main() {
	var configFile string
	var listDevices bool
	flag.StringVar(&configFile, "config", "config.yaml", "Configuration file path")
	flag.BoolVar(&listDevices, "list-devices", false, "List audio input devices and exit")
	flag.Parse()

	// Credentials usually arrive via .env in the working directory.
	godotenv.Load()

	if listDevices {
		devices, err := audio.ListInputDevices()
		if err != nil {
			log.Fatalf("Failed to list input devices: %v", err)
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	selection, err := config.RunSetup(os.Stdin, os.Stdout)
	if err != nil {
		if errors.Is(err, config.ErrSetupCancelled) {
			fmt.Println("Cancelled.")
			return
		}
		log.Fatalf("Setup failed: %v", err)
	}

	if err := run(cfg, selection); err != nil {
		log.Fatalf("Session failed: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Config file %s not found, using defaults", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(cfg *config.Config, sel *config.Selection) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.New().String()
	started := time.Now()
	log.Printf("Session %s: source %s, targets %s", sessionID[:8], sel.Source.Code, targetCodes(sel.Targets))

	// Audio capture into the hand-off queue.
	queue := audio.NewFrameQueue(cfg.Audio.QueueFrames)
	format := audio.Format{
		SampleRate:   cfg.Audio.SampleRate,
		FrameSamples: cfg.Audio.FrameSamples,
		Channels:     1,
	}
	source, err := buildAudioSource(cfg, format, queue)
	if err != nil {
		return err
	}

	// Recognition and translation engines.
	rec, err := buildRecognizer(ctx, cfg, sel.Source.Code)
	if err != nil {
		return err
	}
	defer rec.Close()

	trans, err := translator.NewGoogleTranslator(ctx, cfg.Translator.CredentialsFile, cfg.Translator.Model)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	defer trans.Close()

	glossary, err := translator.LoadGlossary(cfg.Translator.GlossaryFile)
	if err != nil {
		return fmt.Errorf("failed to load glossary: %w", err)
	}

	// Session sinks.
	sessionLog, err := session.NewLog(cfg.Session.OutputDir, sel.Source, sel.Targets, started)
	if err != nil {
		return err
	}
	log.Printf("Session log: %s", sessionLog.Path())

	metrics := session.NewMetrics(cfg.Recognizer.Provider, sessionID, cfg.Audio.SampleRate)

	var publisher pipeline.Publisher
	if cfg.Redis.Enabled {
		rp, err := session.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer rp.Close()
		publisher = rp
	}

	sinks := multiDisplay{display.NewConsole(os.Stdout)}
	var hub *display.Hub
	if cfg.Display.ListenAddr != "" {
		hub = display.NewHub(cfg.Display.ListenAddr, cfg.Display.MaxLines)
		if err := hub.Start(); err != nil {
			return err
		}
		sinks = append(sinks, hub)
	}

	// Pause bookkeeping, wired to the display and the session log.
	pause := pipeline.NewPauseController()
	lastStats := pause.Stats()
	pause.OnTransition(func(paused bool) {
		sinks.SetPaused(paused)
		stats := pause.Stats()
		var elapsed time.Duration
		if paused {
			elapsed = stats.Active - lastStats.Active
		} else {
			elapsed = stats.Paused - lastStats.Paused
		}
		lastStats = stats
		if err := sessionLog.WriteTransition(paused, time.Now(), elapsed); err != nil {
			log.Printf("Failed to record transition: %v", err)
		}
	})

	router := pipeline.NewTranscriptRouter(pipeline.RouterConfig{
		Source:         sel.Source,
		Targets:        sel.Targets,
		DisplayTargets: sel.Display,
		Translator:     trans,
		Glossary:       glossary,
		Display:        sinks,
		Writer:         sessionLog,
		Publisher:      publisher,
		Metrics:        metrics,
		SplitThreshold: cfg.Session.SplitThresholdWords,
		SplitMinWords:  cfg.Session.SplitMinWords,
	})

	supervisor := pipeline.NewSupervisor(pipeline.SupervisorConfig{
		Queue:       queue,
		Pause:       pause,
		Recognizer:  rec,
		Router:      router,
		Metrics:     metrics,
		FeedTimeout: time.Duration(cfg.Audio.FrameTimeout * float64(time.Second)),
	})

	if err := source.Start(); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	supervisorErr := make(chan error, 1)
	go func() { supervisorErr <- supervisor.Run(ctx) }()

	fmt.Println("Commands: [r]esume  [p]ause  [q]uit")
	fmt.Println("Session starts paused. Press r to go live.")

	err = controlLoop(pause, hub, supervisorErr)

	// Teardown order matters: stop capture, break the stream, close the
	// log, then the display. Each step proceeds even if an earlier one
	// failed.
	if stopErr := source.Stop(); stopErr != nil {
		log.Printf("Failed to stop audio capture: %v", stopErr)
	}
	cancel()
	if err == nil {
		// Supervisor is still running; wait for it to observe the cancel.
		if runErr := <-supervisorErr; runErr != nil {
			err = runErr
		}
	}

	stats := pause.Stop()
	if closeErr := sessionLog.Close(time.Now(), stats, router.Seq()); closeErr != nil {
		log.Printf("Failed to close session log: %v", closeErr)
	}
	if hub != nil {
		hub.Stop()
	}

	fmt.Println("\nSession summary:")
	fmt.Println(metrics.Summary())
	fmt.Printf("Active: %s  Paused: %s  Pauses: %d\n",
		stats.Active.Round(time.Second), stats.Paused.Round(time.Second), stats.PauseCount)
	return err
}

// controlLoop multiplexes operator input until quit, interrupt or a fatal
// pipeline error. Returns the error that ended the session, if any.
func controlLoop(pause *pipeline.PauseController, hub *display.Hub, supervisorErr <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	keys := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			keys <- strings.ToLower(strings.TrimSpace(scanner.Text()))
		}
		close(keys)
	}()

	var control <-chan string
	if hub != nil {
		control = hub.Control()
	}

	for {
		select {
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			switch key {
			case "p":
				pause.Pause()
			case "r":
				pause.Resume()
			case "q":
				return nil
			}
		case action := <-control:
			switch action {
			case display.ControlPause:
				pause.Pause()
			case display.ControlResume:
				pause.Resume()
			case display.ControlStop:
				return nil
			}
		case <-sigChan:
			log.Println("Interrupt received, shutting down")
			return nil
		case err := <-supervisorErr:
			return err
		}
	}
}

func buildAudioSource(cfg *config.Config, format audio.Format, queue *audio.FrameQueue) (audio.Source, error) {
	switch cfg.Audio.Source {
	case "microphone":
		return audio.NewMicSource(format, cfg.Audio.DeviceHint, queue), nil
	case "audiosocket":
		return audio.NewSocketSource(cfg.Audio.ListenAddr, queue), nil
	case "file":
		return audio.NewFileSource(cfg.Audio.FilePath, format, queue), nil
	default:
		return nil, fmt.Errorf("unknown audio source: %s", cfg.Audio.Source)
	}
}

func buildRecognizer(ctx context.Context, cfg *config.Config, languageCode string) (recognizer.Recognizer, error) {
	recCfg := recognizer.Config{
		CredentialsFile: cfg.Recognizer.CredentialsFile,
		LanguageCode:    languageCode,
		SampleRate:      cfg.Audio.SampleRate,
		Model:           cfg.Recognizer.Model,
		Punctuation:     cfg.Recognizer.Punctuation,
		BoostPhrases:    cfg.Recognizer.BoostPhrases,
		Boost:           cfg.Recognizer.Boost,
		VoskServerURL:   cfg.Recognizer.VoskServerURL,
	}
	switch cfg.Recognizer.Provider {
	case "google":
		return recognizer.NewGoogleRecognizer(ctx, recCfg)
	case "vosk":
		return recognizer.NewVoskRecognizer(recCfg)
	default:
		return nil, fmt.Errorf("unknown recognizer provider: %s", cfg.Recognizer.Provider)
	}
}

func targetCodes(targets []config.Language) string {
	codes := make([]string, len(targets))
	for i, t := range targets {
		codes[i] = t.Code
	}
	return strings.Join(codes, ",")
}

// multiDisplay fans display updates out to every configured sink.
type multiDisplay []pipeline.Display

func (m multiDisplay) ShowSegment(source, primary, secondary string) {
	for _, d := range m {
		d.ShowSegment(source, primary, secondary)
	}
}

func (m multiDisplay) ShowInterim(text string) {
	for _, d := range m {
		d.ShowInterim(text)
	}
}

func (m multiDisplay) SetPaused(paused bool) {
	for _, d := range m {
		d.SetPaused(paused)
	}
}
