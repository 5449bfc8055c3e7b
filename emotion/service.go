package emotion

import (
	"context"

	"github.com/maastricht-university/interview-coach/clients"
)

// ServiceClassifier classifies sentences with the remote emotion service.
type ServiceClassifier struct {
	http *clients.HTTP
	url  string
}

func NewServiceClassifier(h *clients.HTTP, url string) *ServiceClassifier {
	return &ServiceClassifier{http: h, url: url}
}

func (c *ServiceClassifier) Classify(ctx context.Context, sentence string) ([]Score, error) {
	resp, err := c.http.Emotion(ctx, c.url, sentence)
	if err != nil {
		return nil, err
	}
	out := make([]Score, 0, len(resp.Emotions))
	for _, e := range resp.Emotions {
		out = append(out, Score{Label: e.Label, Score: e.Score})
	}
	return out, nil
}
