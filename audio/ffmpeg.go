package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/interview-coach/clients"
	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
)

// Format is the PCM layout produced by Normalize.
type Format struct {
	SampleRate int
	Channels   int
	Codec      string
	Container  string
}

// WhisperFormat is mono 16 kHz signed 16-bit little-endian wav.
func WhisperFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, Codec: "pcm_s16le", Container: "wav"}
}

// Normalizer transcodes recordings with ffmpeg.
type Normalizer struct {
	runner clients.Runner
	bin    string
	format Format
	log    logrus.FieldLogger
}

func NewNormalizer(runner clients.Runner, bin string, format Format, log logrus.FieldLogger) *Normalizer {
	if runner == nil {
		runner = clients.ExecRunner{}
	}
	if bin == "" {
		bin = "ffmpeg"
	}
	def := WhisperFormat()
	if format.SampleRate <= 0 {
		format.SampleRate = def.SampleRate
	}
	if format.Channels <= 0 {
		format.Channels = def.Channels
	}
	if format.Codec == "" {
		format.Codec = def.Codec
	}
	if format.Container == "" {
		format.Container = def.Container
	}
	return &Normalizer{runner: runner, bin: bin, format: format, log: logging.Component(log, "ffmpeg")}
}

// OutputPath is the normalized file Normalize writes for src.
func (n *Normalizer) OutputPath(src string) string {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	return fmt.Sprintf("%s.%dk.%s", base, n.format.SampleRate/1000, n.format.Container)
}

// Args returns the ffmpeg argument list for src -> dst.
func (n *Normalizer) Args(src, dst string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-ac", strconv.Itoa(n.format.Channels),
		"-ar", strconv.Itoa(n.format.SampleRate),
		"-acodec", n.format.Codec,
		"-f", n.format.Container,
		dst,
	}
}

// Normalize converts src and returns the output path.
func (n *Normalizer) Normalize(ctx context.Context, src string) (string, error) {
	dst := n.OutputPath(src)
	if dst == src {
		return "", failure.Wrapf(failure.Transcode, "output would overwrite input %s", src)
	}
	args := n.Args(src, dst)

	n.log.WithFields(logrus.Fields{"cmd": n.bin, "args": args}).Debug("executing ffmpeg")

	res, err := n.runner.Run(ctx, n.bin, args...)
	if err != nil {
		return "", failure.Wrap(failure.Transcode, fmt.Errorf("start %s: %w", n.bin, err))
	}
	if res.ExitCode != 0 {
		return "", failure.Wrapf(failure.Transcode, "%s exited with code %d: %s",
			n.bin, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	n.log.WithFields(logrus.Fields{"input": src, "output": dst}).Debug("audio normalized")
	return dst, nil
}
