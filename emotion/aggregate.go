// Package emotion scores the emotional tone of a transcript by classifying it
// sentence by sentence and pooling the per-label scores.
package emotion

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
	"github.com/maastricht-university/interview-coach/retry"
)

type Score struct {
	Label string
	Score float64
}

// Classifier scores a single sentence.
type Classifier interface {
	Classify(ctx context.Context, sentence string) ([]Score, error)
}

// Distribution is the pooled result for one transcript. Scores sums to 1
// (within rounding) when it is not empty.
type Distribution struct {
	Scores    map[string]float64
	Dominant  string
	Sentences int
	Skipped   int
}

type Options struct {
	MaxAttempts int
	Backoff     time.Duration
	// Concurrency > 1 classifies sentences in parallel.
	Concurrency int
	// Timeout bounds each classification attempt.
	Timeout time.Duration
}

func DefaultOptions() Options {
	return Options{MaxAttempts: 3, Backoff: 500 * time.Millisecond, Concurrency: 1}
}

type Aggregator struct {
	classifier Classifier
	opts       Options
	log        logrus.FieldLogger
}

func NewAggregator(c Classifier, opts Options, log logrus.FieldLogger) *Aggregator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Aggregator{classifier: c, opts: opts, log: logging.Component(log, "emotion")}
}

// Analyze classifies every sentence of transcript. Sentences whose
// classification keeps failing are logged and left out; Analyze itself
// never fails.
func (a *Aggregator) Analyze(ctx context.Context, transcript string) Distribution {
	sentences := Split(transcript)
	acc := newAccumulator()

	if a.opts.Concurrency == 1 || len(sentences) < 2 {
		for i, s := range sentences {
			a.classifyInto(ctx, acc, i, s)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.opts.Concurrency)
		for i, s := range sentences {
			g.Go(func() error {
				a.classifyInto(ctx, acc, i, s)
				return nil
			})
		}
		_ = g.Wait()
	}

	d := Normalize(acc.totals)
	d.Sentences = len(sentences)
	d.Skipped = acc.skipped
	return d
}

func (a *Aggregator) classifyInto(ctx context.Context, acc *accumulator, idx int, sentence string) {
	log := a.log.WithField("sentence", idx)
	policy := retry.Policy{
		MaxAttempts: a.opts.MaxAttempts,
		Delay:       a.opts.Backoff,
		OnRetry: func(attempt int, err error) {
			log.WithError(err).WithField("attempt", attempt).Warn("emotion classification failed, retrying")
		},
	}

	var scores []Score
	err := policy.Do(ctx, func(int) error {
		cctx, cancel := a.attemptContext(ctx)
		defer cancel()
		var err error
		scores, err = a.classifier.Classify(cctx, sentence)
		return err
	})
	if err != nil {
		log.WithError(failure.Wrap(failure.Classification, err)).Warn("skipping sentence after exhausting retries")
		acc.skip()
		return
	}
	acc.add(scores)
}

func (a *Aggregator) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.Timeout > 0 {
		return context.WithTimeout(ctx, a.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

type accumulator struct {
	mu      sync.Mutex
	totals  map[string]float64
	skipped int
}

func newAccumulator() *accumulator { return &accumulator{totals: map[string]float64{}} }

func (a *accumulator) add(scores []Score) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range scores {
		if s.Label == "" || math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 {
			continue
		}
		a.totals[s.Label] += s.Score
	}
}

func (a *accumulator) skip() {
	a.mu.Lock()
	a.skipped++
	a.mu.Unlock()
}

// Normalize turns summed scores into a distribution with 4-decimal values
// and picks the dominant label, breaking ties by label order. Rounding uses
// largest remainders so the values still add up to exactly 1. A zero total
// yields an empty distribution with a Neutral dominant emotion.
func Normalize(totals map[string]float64) Distribution {
	sum := 0.0
	for _, v := range totals {
		sum += v
	}
	if sum <= 0 {
		return Distribution{Scores: map[string]float64{}, Dominant: Neutral}
	}

	const units = 10000
	type share struct {
		label string
		units int
		rem   float64
	}
	shares := make([]share, 0, len(totals))
	assigned := 0
	for k, v := range totals {
		exact := v / sum * units
		whole := int(math.Floor(exact))
		shares = append(shares, share{label: k, units: whole, rem: exact - float64(whole)})
		assigned += whole
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].rem != shares[j].rem {
			return shares[i].rem > shares[j].rem
		}
		return shares[i].label < shares[j].label
	})
	for i := 0; assigned < units && i < len(shares); i++ {
		shares[i].units++
		assigned++
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].units != shares[j].units {
			return shares[i].units > shares[j].units
		}
		return shares[i].label < shares[j].label
	})
	scores := make(map[string]float64, len(shares))
	for _, s := range shares {
		scores[s.label] = float64(s.units) / units
	}
	return Distribution{Scores: scores, Dominant: shares[0].label}
}
