package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration, decoded from a yaml file and
// passed by reference into each component. There is no ambient lookup: every
// constructor receives the slice of this struct it needs.
type Config struct {
	Audio struct {
		Source       string  `yaml:"source"` // "microphone", "audiosocket" or "file"
		DeviceHint   string  `yaml:"device_hint"`
		SampleRate   int     `yaml:"sample_rate"`
		FrameSamples int     `yaml:"frame_samples"`
		ListenAddr   string  `yaml:"listen_addr"` // audiosocket source
		FilePath     string  `yaml:"file_path"`   // file source
		QueueFrames  int     `yaml:"queue_frames"`
		FrameTimeout float64 `yaml:"frame_timeout_seconds"`
	} `yaml:"audio"`
	Recognizer struct {
		Provider        string   `yaml:"provider"` // "google" or "vosk"
		CredentialsFile string   `yaml:"credentials_file"`
		Model           string   `yaml:"model"`
		Punctuation     bool     `yaml:"punctuation"`
		BoostPhrases    []string `yaml:"boost_phrases"`
		Boost           float64  `yaml:"boost"`
		VoskServerURL   string   `yaml:"vosk_server_url"`
	} `yaml:"recognizer"`
	Translator struct {
		CredentialsFile string `yaml:"credentials_file"`
		Model           string `yaml:"model"`
		GlossaryFile    string `yaml:"glossary_file"`
	} `yaml:"translator"`
	Display struct {
		ListenAddr string `yaml:"listen_addr"`
		MaxLines   int    `yaml:"max_lines"`
	} `yaml:"display"`
	Session struct {
		OutputDir          string `yaml:"output_dir"`
		SplitThresholdWords int   `yaml:"split_threshold_words"`
		SplitMinWords       int   `yaml:"split_min_words"`
	} `yaml:"session"`
	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`
}

// Load reads and validates the yaml config file, filling defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config with every default applied, for running without a
// config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.FrameSamples == 0 {
		c.Audio.FrameSamples = 1024
	}
	if c.Audio.ListenAddr == "" {
		c.Audio.ListenAddr = ":8090"
	}
	if c.Audio.QueueFrames == 0 {
		c.Audio.QueueFrames = 256
	}
	if c.Audio.FrameTimeout == 0 {
		c.Audio.FrameTimeout = 5.0
	}
	if c.Recognizer.Provider == "" {
		c.Recognizer.Provider = "google"
	}
	if c.Recognizer.Model == "" {
		c.Recognizer.Model = "latest_long"
	}
	if len(c.Recognizer.BoostPhrases) == 0 {
		c.Recognizer.BoostPhrases = DefaultBoostPhrases
	}
	if c.Recognizer.Boost == 0 {
		c.Recognizer.Boost = 15
	}
	if c.Translator.Model == "" {
		c.Translator.Model = "nmt"
	}
	if c.Display.ListenAddr == "" {
		c.Display.ListenAddr = ":8091"
	}
	if c.Display.MaxLines == 0 {
		c.Display.MaxLines = 3
	}
	if c.Session.OutputDir == "" {
		c.Session.OutputDir = "results"
	}
	if c.Session.SplitThresholdWords == 0 {
		c.Session.SplitThresholdWords = 30
	}
	if c.Session.SplitMinWords == 0 {
		c.Session.SplitMinWords = 10
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "sermoncast:segments"
	}
}

func (c *Config) validate() error {
	switch c.Audio.Source {
	case "microphone", "audiosocket", "file":
	default:
		return fmt.Errorf("unknown audio source: %s", c.Audio.Source)
	}
	switch c.Recognizer.Provider {
	case "google", "vosk":
	default:
		return fmt.Errorf("unknown recognizer provider: %s", c.Recognizer.Provider)
	}
	if c.Audio.Source == "file" && c.Audio.FilePath == "" {
		return fmt.Errorf("audio source is \"file\" but file_path is not set")
	}
	if c.Recognizer.Provider == "vosk" && c.Recognizer.VoskServerURL == "" {
		return fmt.Errorf("recognizer provider is \"vosk\" but vosk_server_url is not set")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis enabled but addr is not set")
	}
	return nil
}
