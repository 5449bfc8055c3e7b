package transcribe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/interview-coach/clients"
	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
)

// WhisperCLI runs a local whisper.cpp binary against a model file.
type WhisperCLI struct {
	runner   clients.Runner
	command  string
	model    string
	language string
	threads  int
	log      logrus.FieldLogger
}

type WhisperOptions struct {
	Command  string
	Model    string
	Language string
	Threads  int
}

func NewWhisperCLI(runner clients.Runner, opts WhisperOptions, log logrus.FieldLogger) *WhisperCLI {
	if runner == nil {
		runner = clients.ExecRunner{}
	}
	if opts.Command == "" {
		opts.Command = "whisper-cli"
	}
	return &WhisperCLI{
		runner:   runner,
		command:  opts.Command,
		model:    opts.Model,
		language: opts.Language,
		threads:  opts.Threads,
		log:      logging.Component(log, "whisper"),
	}
}

func (w *WhisperCLI) args(wavPath string) []string {
	args := []string{"-m", w.model, "-f", wavPath, "-nt", "-np"}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}
	if w.threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.threads))
	}
	return args
}

func (w *WhisperCLI) Transcribe(ctx context.Context, wavPath string) (string, error) {
	args := w.args(wavPath)
	w.log.WithFields(logrus.Fields{"cmd": w.command, "args": args}).Debug("executing whisper")

	res, err := w.runner.Run(ctx, w.command, args...)
	if err != nil {
		return "", failure.Wrap(failure.Transcription, fmt.Errorf("start %s: %w", w.command, err))
	}
	if res.ExitCode != 0 {
		return "", failure.Wrapf(failure.Transcription, "%s exited with code %d: %s",
			w.command, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return Clean(string(res.Stdout)), nil
}
