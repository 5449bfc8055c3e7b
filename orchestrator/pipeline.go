package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/interview-coach/audio"
	"github.com/maastricht-university/interview-coach/clients"
	cfg "github.com/maastricht-university/interview-coach/config"
	"github.com/maastricht-university/interview-coach/emotion"
	"github.com/maastricht-university/interview-coach/evaluation"
	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
	"github.com/maastricht-university/interview-coach/transcribe"
)

type Store interface {
	Save(r io.Reader, hint string) (string, error)
	Remove(paths ...string) error
}

type Normalizer interface {
	// OutputPath names the file Normalize will write so it can be cleaned up
	// even when conversion fails halfway.
	OutputPath(src string) string
	Normalize(ctx context.Context, src string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, transcript string) emotion.Distribution
}

type Synthesizer interface {
	Synthesize(ctx context.Context, in evaluation.Input) (*evaluation.Report, error)
}

// Deps are the stage implementations a Pipeline runs. Archive is optional.
type Deps struct {
	Store       Store
	Normalizer  Normalizer
	Transcriber transcribe.Transcriber
	Emotions    Analyzer
	Synthesizer Synthesizer
	Archive     *Archive
	Timeouts    cfg.Timeouts
	Log         logrus.FieldLogger
}

type Pipeline struct {
	store       Store
	normalizer  Normalizer
	transcriber transcribe.Transcriber
	emotions    Analyzer
	synth       Synthesizer
	archive     *Archive
	timeouts    cfg.Timeouts
	log         logrus.FieldLogger
}

func New(d Deps) *Pipeline {
	return &Pipeline{
		store:       d.Store,
		normalizer:  d.Normalizer,
		transcriber: d.Transcriber,
		emotions:    d.Emotions,
		synth:       d.Synthesizer,
		archive:     d.Archive,
		timeouts:    d.Timeouts,
		log:         logging.Component(d.Log, "pipeline"),
	}
}

// NewPipeline wires the production stages described by c.
func NewPipeline(c *cfg.Root, log logrus.FieldLogger) (*Pipeline, error) {
	runner := clients.ExecRunner{}

	var tr transcribe.Transcriber
	switch c.Transcription.Backend {
	case "openai":
		ow, err := transcribe.NewOpenAIWhisper(c.Transcription.APIKey, c.Transcription.APIBase,
			c.Transcription.APIModel, c.Transcription.Language)
		if err != nil {
			return nil, err
		}
		tr = ow
	case "http":
		h := clients.NewHTTPWithTimeout(c.Timeouts.Transcribe).WithToken(c.Services.ASR.Token)
		tr = transcribe.NewService(h, c.Services.ASR.URL)
	default:
		tr = transcribe.NewWhisperCLI(runner, transcribe.WhisperOptions{
			Command:  c.Transcription.Command,
			Model:    c.Transcription.Model,
			Language: c.Transcription.Language,
			Threads:  c.Transcription.Threads,
		}, log)
	}

	gen, err := clients.NewOpenAIGenerator(clients.OpenAIGeneratorConfig{
		APIKey:          c.Evaluation.APIKey,
		BaseURL:         c.Evaluation.BaseURL,
		Model:           c.Evaluation.Model,
		MaxOutputTokens: c.Evaluation.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	classifier := emotion.NewServiceClassifier(
		clients.NewHTTP().WithToken(c.Services.Emotion.Token), c.Services.Emotion.URL)

	d := Deps{
		Store: audio.NewStore(c.Paths.Temp),
		Normalizer: audio.NewNormalizer(runner, c.Audio.FFmpeg, audio.Format{
			SampleRate: c.Audio.SampleRate,
			Channels:   c.Audio.Channels,
			Codec:      c.Audio.Codec,
			Container:  c.Audio.Format,
		}, log),
		Transcriber: tr,
		Emotions: emotion.NewAggregator(classifier, emotion.Options{
			MaxAttempts: c.Emotion.MaxAttempts,
			Backoff:     c.Emotion.Backoff,
			Concurrency: c.Emotion.Concurrency,
			Timeout:     c.Timeouts.Classify,
		}, log),
		Synthesizer: evaluation.NewSynthesizer(gen, c.Evaluation.MaxAttempts, log),
		Timeouts:    c.Timeouts,
		Log:         log,
	}
	if c.Archive.Enabled {
		d.Archive = NewArchive(c.Paths.Outputs)
	}
	return New(d), nil
}

// Run processes one submission. Temporary audio is removed on every path
// once it has been written. Errors carry a failure.Kind naming the stage.
func (p *Pipeline) Run(ctx context.Context, sub Submission) (_ *Result, err error) {
	if sub.Audio == nil {
		return nil, failure.Wrapf(failure.Input, "no audio file uploaded")
	}

	log := p.log.WithField("request_id", sub.RequestID)
	state := StateStart
	started := time.Now()
	defer func() {
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"state": state, "next": StateFailed, "elapsed": time.Since(started),
			}).Error("answer processing failed")
		}
	}()
	advance := func(next State) {
		log.WithFields(logrus.Fields{"state": state, "next": next}).Info("pipeline transition")
		state = next
	}

	src, err := p.store.Save(sub.Audio, sub.AudioHint)
	if err != nil {
		return nil, failure.Wrap(failure.Storage, err)
	}
	artifacts := []string{src, p.normalizer.OutputPath(src)}
	defer func() {
		if rmErr := p.store.Remove(artifacts...); rmErr != nil {
			log.WithError(rmErr).Warn("temporary audio cleanup failed")
		}
	}()
	advance(StateMaterialized)

	sctx, cancel := withTimeout(ctx, p.timeouts.Transcode)
	wav, err := p.normalizer.Normalize(sctx, src)
	cancel()
	if err != nil {
		return nil, stageError(failure.Transcode, "normalize", err)
	}
	if wav != artifacts[1] {
		artifacts = append(artifacts, wav)
	}
	advance(StateNormalized)

	sctx, cancel = withTimeout(ctx, p.timeouts.Transcribe)
	transcript, err := p.transcriber.Transcribe(sctx, wav)
	cancel()
	if err != nil {
		return nil, stageError(failure.Transcription, "transcribe", err)
	}
	transcript = strings.TrimSpace(transcript)
	advance(StateTranscribed)

	if transcript == "" {
		advance(StateNoSpeech)
		return &Result{State: StateNoSpeech, NoSpeech: &NoSpeech{SkipEvaluation: true, Message: NoSpeechMessage}}, nil
	}

	dist := p.emotions.Analyze(ctx, transcript)
	log.WithFields(logrus.Fields{
		"dominant": dist.Dominant, "sentences": dist.Sentences, "skipped": dist.Skipped,
	}).Debug("emotion distribution")
	advance(StateClassified)

	sctx, cancel = withTimeout(ctx, p.timeouts.Synthesize)
	report, err := p.synth.Synthesize(sctx, evaluation.Input{
		Question:   sub.Question,
		Domain:     sub.Domain,
		Experience: sub.Experience,
		Transcript: transcript,
		Emotion:    emotion.Describe(dist.Dominant),
		Posture:    sub.Posture,
		Facial:     sub.Facial,
	})
	cancel()
	if err != nil {
		return nil, stageError(failure.Synthesis, "synthesize", err)
	}
	advance(StateSynthesized)

	ans := &Answer{
		Transcription:          transcript,
		PostureAnalysis:        Telemetry{Data: sub.Posture},
		EmotionAnalysis:        Telemetry{Data: sub.Facial},
		DominantEmotion:        dist.Dominant,
		TextualEmotionAnalysis: EmotionScores{Data: dist.Scores},
		Evaluation:             report.Evaluation,
		HolisticFeedback:       report.HolisticFeedback,
		Question:               sub.Question,
	}
	if p.archive != nil {
		if path, aerr := p.archive.Save(sub, ans); aerr != nil {
			log.WithError(aerr).Warn("report archive failed")
		} else {
			log.WithField("path", path).Debug("report archived")
		}
	}

	advance(StateDone)
	log.WithField("elapsed", time.Since(started)).Info("answer processed")
	return &Result{State: StateDone, Answer: ans}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// stageError tags err with kind unless the stage already did, and names
// timeouts explicitly.
func stageError(kind failure.Kind, stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%s timed out: %w", stage, err)
	}
	return failure.Wrap(kind, err)
}
