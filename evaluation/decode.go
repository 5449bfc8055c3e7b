package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/maastricht-university/interview-coach/failure"
)

// StripFences removes a surrounding ``` or ```json fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode parses model output into a Report. When prose surrounds the object
// the outermost {...} is tried.
func Decode(raw string) (*Report, error) {
	s := StripFences(raw)
	if s == "" {
		return nil, failure.Wrapf(failure.Schema, "empty model output")
	}

	var r Report
	if err := json.Unmarshal([]byte(s), &r); err == nil {
		return &r, nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return nil, failure.Wrapf(failure.Schema, "no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &r); err != nil {
		return nil, failure.Wrap(failure.Schema, fmt.Errorf("unmarshal model output: %w", err))
	}
	return &r, nil
}

// Validate checks the invariants the schema alone cannot guarantee.
func Validate(r *Report) error {
	if r == nil {
		return failure.Wrapf(failure.Schema, "nil report")
	}
	var errs []error
	check := func(field, v string) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s is empty", field))
		}
	}

	ratings := map[string]Rating{
		"clarity":      r.Evaluation.Ratings.Clarity,
		"relevance":    r.Evaluation.Ratings.Relevance,
		"completeness": r.Evaluation.Ratings.Completeness,
	}
	for _, name := range []string{"clarity", "relevance", "completeness"} {
		rt := ratings[name]
		if rt.Score < MinScore || rt.Score > MaxScore {
			errs = append(errs, fmt.Errorf("ratings.%s.score %d outside [%d,%d]", name, rt.Score, MinScore, MaxScore))
		}
		check("ratings."+name+".justification", rt.Justification)
	}
	if n := len(r.Evaluation.ImprovementTips); n > MaxTips {
		errs = append(errs, fmt.Errorf("improvementTips has %d entries, max %d", n, MaxTips))
	}
	check("toneAnalysis", r.Evaluation.ToneAnalysis)
	check("strengths", r.Evaluation.Strengths)
	check("suggestedAnswer", r.Evaluation.SuggestedAnswer)
	check("holisticFeedback.insight", r.HolisticFeedback.Insight)
	check("holisticFeedback.strength", r.HolisticFeedback.Strength)
	check("holisticFeedback.improvementTip", r.HolisticFeedback.ImprovementTip)

	if err := errors.Join(errs...); err != nil {
		return failure.Wrap(failure.Schema, err)
	}
	return nil
}
