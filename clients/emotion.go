package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Emotion (/detect) ---
type EmoReq struct {
	Text string `json:"text"`
}
type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
type EmoResp struct {
	Emotions        []EmoScore `json:"emotions"`
	DominantEmotion string     `json:"dominant_emotion"`
}

// Emotion classifies one piece of text. Besides the {"emotions": [...]}
// object it accepts a bare [{label,score}] list and the [[{label,score}]]
// list returned by hosted text-classification pipelines.
func (h *HTTP) Emotion(ctx context.Context, url, text string) (*EmoResp, error) {
	b, _ := json.Marshal(EmoReq{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/detect", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	h.authorize(req)

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("emotion read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion %s: %s", resp.Status, string(body))
	}

	out, err := decodeEmotion(body)
	if err != nil {
		return nil, fmt.Errorf("emotion decode: %w", err)
	}
	return out, nil
}

func decodeEmotion(body []byte) (*EmoResp, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if body[0] != '[' {
		var out EmoResp
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	var nested [][]EmoScore
	if err := json.Unmarshal(body, &nested); err == nil {
		var out EmoResp
		for _, row := range nested {
			out.Emotions = append(out.Emotions, row...)
		}
		return &out, nil
	}
	var flat []EmoScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	return &EmoResp{Emotions: flat}, nil
}
