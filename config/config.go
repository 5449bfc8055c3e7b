package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL   string `yaml:"url" mapstructure:"url"`
	Token string `yaml:"token,omitempty" mapstructure:"token"`
}
type Services struct {
	ASR     Service `yaml:"asr" mapstructure:"asr"`
	Emotion Service `yaml:"emotion" mapstructure:"emotion"`
}
type Audio struct {
	SampleRate int    `yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels   int    `yaml:"channels" mapstructure:"channels"`
	Format     string `yaml:"format" mapstructure:"format"`
	Codec      string `yaml:"codec" mapstructure:"codec"`
	FFmpeg     string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
}
type Transcription struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // "whisper-cli", "openai" or "http"
	Command  string `yaml:"command" mapstructure:"command"`
	Model    string `yaml:"model" mapstructure:"model"`
	Language string `yaml:"language" mapstructure:"language"`
	Threads  int    `yaml:"threads" mapstructure:"threads"`
	APIModel string `yaml:"api_model" mapstructure:"api_model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIBase  string `yaml:"api_base,omitempty" mapstructure:"api_base"`
}
type Emotion struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff" mapstructure:"backoff"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
}
type Evaluation struct {
	Model           string `yaml:"model" mapstructure:"model"`
	APIKey          string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL         string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxOutputTokens int    `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	MaxAttempts     int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}
type Timeouts struct {
	Transcode  time.Duration `yaml:"transcode" mapstructure:"transcode"`
	Transcribe time.Duration `yaml:"transcribe" mapstructure:"transcribe"`
	Classify   time.Duration `yaml:"classify" mapstructure:"classify"`
	Synthesize time.Duration `yaml:"synthesize" mapstructure:"synthesize"`
}
type Server struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	MaxUpload string `yaml:"max_upload" mapstructure:"max_upload"`
}
type Root struct {
	Pipeline struct {
		Name      string `yaml:"name" mapstructure:"name"`
		Version   string `yaml:"version" mapstructure:"version"`
		LogLvl    string `yaml:"log_level" mapstructure:"log_level"`
		LogFormat string `yaml:"log_format" mapstructure:"log_format"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Server        Server        `yaml:"server" mapstructure:"server"`
	Audio         Audio         `yaml:"audio" mapstructure:"audio"`
	Transcription Transcription `yaml:"transcription" mapstructure:"transcription"`
	Services      Services      `yaml:"services" mapstructure:"services"`
	Emotion       Emotion       `yaml:"emotion" mapstructure:"emotion"`
	Evaluation    Evaluation    `yaml:"evaluation" mapstructure:"evaluation"`
	Timeouts      Timeouts      `yaml:"timeouts" mapstructure:"timeouts"`
	Archive       struct {
		Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	} `yaml:"archive" mapstructure:"archive"`
	Paths struct {
		Temp    string `yaml:"temp" mapstructure:"temp"`
		Outputs string `yaml:"outputs" mapstructure:"outputs"`
	} `yaml:"paths" mapstructure:"paths"`
}

const EnvPrefix = "COACH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "interview-coach")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload", "25M")

	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.format", "wav")
	v.SetDefault("audio.codec", "pcm_s16le")
	v.SetDefault("audio.ffmpeg", "ffmpeg")

	v.SetDefault("transcription.backend", "whisper-cli")
	v.SetDefault("transcription.command", "whisper-cli")
	v.SetDefault("transcription.model", filepath.Join("models", "ggml-base.en.bin"))
	v.SetDefault("transcription.language", "en")
	v.SetDefault("transcription.threads", 0)
	v.SetDefault("transcription.api_model", "whisper-1")
	v.SetDefault("transcription.api_key", "")
	v.SetDefault("transcription.api_base", "")

	v.SetDefault("services.asr.url", "")
	v.SetDefault("services.asr.token", "")
	v.SetDefault("services.emotion.url", "http://localhost:8001")
	v.SetDefault("services.emotion.token", "")

	v.SetDefault("emotion.max_attempts", 3)
	v.SetDefault("emotion.backoff", 500*time.Millisecond)
	v.SetDefault("emotion.concurrency", 1)

	v.SetDefault("evaluation.model", "gpt-4o-mini")
	v.SetDefault("evaluation.api_key", "")
	v.SetDefault("evaluation.base_url", "")
	v.SetDefault("evaluation.max_output_tokens", 2000)
	v.SetDefault("evaluation.max_attempts", 2)

	v.SetDefault("timeouts.transcode", 60*time.Second)
	v.SetDefault("timeouts.transcribe", 120*time.Second)
	v.SetDefault("timeouts.classify", 30*time.Second)
	v.SetDefault("timeouts.synthesize", 90*time.Second)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("paths.temp", filepath.Join(os.TempDir(), "interview-coach"))
	v.SetDefault("paths.outputs", "outputs")
}

// Load reads configuration from path, or from the first file found among
// config/<CONFIG_ENV>/config.yaml and config.yaml when path is empty. A
// missing file is not an error: defaults and COACH_* environment variables
// still apply.
func Load(path string) (*Root, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-owned viper instance, so command-line flags
// bound to it take precedence.
func LoadWith(v *viper.Viper, path string) (*Root, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	if path == "" {
		path = findConfig()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Evaluation.APIKey == "" {
		cfg.Evaluation.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Transcription.APIKey == "" {
		cfg.Transcription.APIKey = cfg.Evaluation.APIKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfig() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Root) Validate() error {
	switch c.Transcription.Backend {
	case "whisper-cli", "openai":
	case "http":
		if c.Services.ASR.URL == "" {
			return errors.New("transcription.backend http requires services.asr.url")
		}
	default:
		return fmt.Errorf("transcription.backend: unknown backend %q", c.Transcription.Backend)
	}
	if c.Audio.SampleRate <= 0 || c.Audio.Channels <= 0 {
		return errors.New("audio: sample_rate and channels must be positive")
	}
	if c.Emotion.MaxAttempts < 1 {
		return errors.New("emotion.max_attempts must be at least 1")
	}
	if c.Paths.Temp == "" {
		return errors.New("paths.temp is required")
	}
	return nil
}

// Write renders the configuration as YAML with secrets masked.
func (c *Root) Write(w io.Writer) error {
	out := *c
	out.Evaluation.APIKey = mask(out.Evaluation.APIKey)
	out.Transcription.APIKey = mask(out.Transcription.APIKey)
	out.Services.Emotion.Token = mask(out.Services.Emotion.Token)
	out.Services.ASR.Token = mask(out.Services.ASR.Token)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
