package emotion

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maastricht-university/interview-coach/clients"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"I led a team of five engineers.", []string{"I led a team of five engineers."}},
		{"Hello there. How are you? Great!", []string{"Hello there.", "How are you?", "Great!"}},
		{"no punctuation at all", []string{"no punctuation at all"}},
		{"Really?! Yes... and then", []string{"Really?!", "Yes...", "and then"}},
		{"Yes. . Done.", []string{"Yes..", "Done."}},
		{"   ", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := Split(tc.in)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") || len(got) != len(tc.want) {
			t.Errorf("Split(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitPreservesNonSpaceCharacters(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"I led a team.  We shipped on time!   Would I do it again? Absolutely",
		"One.Two.Three",
		"Wait... what?!  ok",
		"  leading and trailing.  ",
	}
	strip := func(s string) string { return strings.Join(strings.Fields(s), "") }
	for _, in := range inputs {
		got := strings.Join(Split(in), " ")
		if strip(got) != strip(in) {
			t.Errorf("reassembled %q from %q", got, in)
		}
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"joy":      "Confident",
		"love":     "Confident",
		"surprise": "Engaged",
		"sadness":  "Hesitant",
		"fear":     "Cautious",
		"anger":    "Assertive",
		"neutral":  "neutral",
		"disgust":  "disgust",
	}
	for in, want := range cases {
		if got := Describe(in); got != want {
			t.Errorf("Describe(%q)=%q want %q", in, got, want)
		}
	}
}

func sum(m map[string]float64) float64 {
	s := 0.0
	for _, v := range m {
		s += v
	}
	return s
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	d := Normalize(map[string]float64{"joy": 1.2, "fear": 0.6, "anger": 0.2})
	if d.Dominant != "joy" {
		t.Fatalf("Dominant=%q", d.Dominant)
	}
	if d.Scores["joy"] != 0.6 || d.Scores["fear"] != 0.3 || d.Scores["anger"] != 0.1 {
		t.Fatalf("Scores=%v", d.Scores)
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	t.Parallel()

	inputs := []map[string]float64{
		{"a": 1, "b": 1, "c": 1},
		{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1, "f": 1, "g": 1},
		{"joy": 0.33333, "sadness": 0.00004, "anger": 2.71828, "fear": 0.5, "love": 0.12345, "surprise": 0.99999},
		{"only": 0.0001},
		{"zero": 0, "pos": 3},
	}
	for _, in := range inputs {
		d := Normalize(in)
		if s := sum(d.Scores); math.Abs(s-1) > 1e-4 {
			t.Errorf("sum=%v for %v -> %v", s, in, d.Scores)
		}
		for k, v := range d.Scores {
			if v < 0 || math.Abs(v*1e4-math.Round(v*1e4)) > 1e-6 {
				t.Errorf("%s=%v not a 4-decimal share", k, v)
			}
		}
	}
}

func TestNormalizeTieBreaksOnLabel(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		d := Normalize(map[string]float64{"surprise": 0.5, "anger": 0.5, "joy": 0.5, "fear": 0.5})
		if d.Dominant != "anger" {
			t.Fatalf("Dominant=%q", d.Dominant)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []map[string]float64{nil, {}, {"joy": 0}} {
		d := Normalize(in)
		if d.Dominant != Neutral || len(d.Scores) != 0 || d.Scores == nil {
			t.Fatalf("Normalize(%v)=%+v", in, d)
		}
	}
}

type scriptedClassifier struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	reply map[string][]Score
}

func (c *scriptedClassifier) Classify(_ context.Context, s string) ([]Score, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[s]++
	if c.fail[s] {
		return nil, errors.New("classifier unavailable")
	}
	return c.reply[s], nil
}

func fastOptions(concurrency int) Options {
	return Options{MaxAttempts: 3, Backoff: time.Millisecond, Concurrency: concurrency}
}

func TestAnalyzeSumsAcrossSentences(t *testing.T) {
	t.Parallel()

	c := &scriptedClassifier{reply: map[string][]Score{
		"I was nervous.":   {{"fear", 0.8}, {"joy", 0.2}},
		"Then we shipped!": {{"joy", 0.9}, {"fear", 0.1}},
	}}
	for _, conc := range []int{1, 4} {
		d := NewAggregator(c, fastOptions(conc), nil).Analyze(context.Background(), "I was nervous. Then we shipped!")
		if d.Dominant != "joy" {
			t.Fatalf("concurrency %d: Dominant=%q", conc, d.Dominant)
		}
		if d.Scores["joy"] != 0.55 || d.Scores["fear"] != 0.45 {
			t.Fatalf("concurrency %d: Scores=%v", conc, d.Scores)
		}
		if d.Sentences != 2 || d.Skipped != 0 {
			t.Fatalf("concurrency %d: sentences=%d skipped=%d", conc, d.Sentences, d.Skipped)
		}
	}
}

func TestAnalyzeAllFailuresIsNeutral(t *testing.T) {
	t.Parallel()

	c := &scriptedClassifier{fail: map[string]bool{"One.": true, "Two.": true}}
	d := NewAggregator(c, fastOptions(1), nil).Analyze(context.Background(), "One. Two.")
	if d.Dominant != Neutral || len(d.Scores) != 0 {
		t.Fatalf("got %+v", d)
	}
	if c.calls["One."] != 3 || c.calls["Two."] != 3 {
		t.Fatalf("calls=%v", c.calls)
	}
	if d.Skipped != 2 {
		t.Fatalf("Skipped=%d", d.Skipped)
	}
}

func TestAnalyzeTwoOfThreeFail(t *testing.T) {
	t.Parallel()

	c := &scriptedClassifier{
		fail:  map[string]bool{"First.": true, "Second.": true},
		reply: map[string][]Score{"Third.": {{"sadness", 3}, {"joy", 1}}},
	}
	d := NewAggregator(c, fastOptions(1), nil).Analyze(context.Background(), "First. Second. Third.")
	if d.Dominant != "sadness" {
		t.Fatalf("Dominant=%q", d.Dominant)
	}
	if d.Scores["sadness"] != 0.75 || d.Scores["joy"] != 0.25 || len(d.Scores) != 2 {
		t.Fatalf("Scores=%v", d.Scores)
	}
	if d.Skipped != 2 {
		t.Fatalf("Skipped=%d", d.Skipped)
	}
}

type flakyClassifier struct{ calls int }

func (f *flakyClassifier) Classify(context.Context, string) ([]Score, error) {
	f.calls++
	if f.calls < 3 {
		return nil, errors.New("503")
	}
	return []Score{{"joy", 1}}, nil
}

func TestAnalyzeRecoversOnThirdAttempt(t *testing.T) {
	t.Parallel()

	f := &flakyClassifier{}
	d := NewAggregator(f, fastOptions(1), nil).Analyze(context.Background(), "Hello.")
	if d.Dominant != "joy" || d.Scores["joy"] != 1 {
		t.Fatalf("got %+v", d)
	}
	if f.calls != 3 {
		t.Fatalf("calls=%d", f.calls)
	}
}

func TestServiceClassifier(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.9},{"label":"anger","score":0.1}]]`))
	}))
	defer srv.Close()

	got, err := NewServiceClassifier(clients.NewHTTP(), srv.URL).Classify(context.Background(), "Great.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) != 2 || got[0] != (Score{"joy", 0.9}) {
		t.Fatalf("got %+v", got)
	}
}
