// Package evaluation asks a generative model for a structured coaching report
// on one interview answer and validates what comes back.
package evaluation

type Rating struct {
	Score         int    `json:"score" jsonschema:"required,minimum=1,maximum=5,description=Integer score from 1 (poor) to 5 (excellent)"`
	Justification string `json:"justification" jsonschema:"required,description=One sentence explaining the score"`
}

type Ratings struct {
	Clarity      Rating `json:"clarity" jsonschema:"required"`
	Relevance    Rating `json:"relevance" jsonschema:"required"`
	Completeness Rating `json:"completeness" jsonschema:"required"`
}

type Evaluation struct {
	Ratings         Ratings  `json:"ratings" jsonschema:"required"`
	ToneAnalysis    string   `json:"toneAnalysis" jsonschema:"required,description=How the vocal tone compares with the facial expressions"`
	Strengths       string   `json:"strengths" jsonschema:"required,description=The strongest aspect of the answer content"`
	ImprovementTips []string `json:"improvementTips" jsonschema:"required,maxItems=5,description=Up to five actionable tips ordered by impact"`
	SuggestedAnswer string   `json:"suggestedAnswer" jsonschema:"required,description=An improved version of the answer"`
}

type HolisticFeedback struct {
	Insight        string `json:"insight" jsonschema:"required,description=How verbal and non-verbal signals combine"`
	Strength       string `json:"strength" jsonschema:"required,description=The single strongest non-verbal behaviour"`
	ImprovementTip string `json:"improvementTip" jsonschema:"required,description=The single highest-impact non-verbal tip"`
}

// Report is the model output for one answer. It is built once by the
// Synthesizer and not modified afterwards.
type Report struct {
	Evaluation       Evaluation       `json:"evaluation" jsonschema:"required"`
	HolisticFeedback HolisticFeedback `json:"holisticFeedback" jsonschema:"required"`
}

const (
	MinScore = 1
	MaxScore = 5
	MaxTips  = 5
)
