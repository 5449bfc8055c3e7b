package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmotionResponseShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"object", `{"emotions":[{"label":"joy","score":0.75},{"label":"fear","score":0.25}],"dominant_emotion":"joy"}`},
		{"flat", `[{"label":"joy","score":0.75},{"label":"fear","score":0.25}]`},
		{"nested", `[[{"label":"joy","score":0.75},{"label":"fear","score":0.25}]]`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/detect" {
					t.Errorf("path=%q", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("Authorization=%q", got)
				}
				var req EmoReq
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text != "I am happy." {
					t.Errorf("request text=%q err=%v", req.Text, err)
				}
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			out, err := NewHTTP().WithToken("tok").Emotion(context.Background(), srv.URL, "I am happy.")
			if err != nil {
				t.Fatalf("Emotion: %v", err)
			}
			if len(out.Emotions) != 2 || out.Emotions[0].Label != "joy" || out.Emotions[0].Score != 0.75 {
				t.Fatalf("emotions=%+v", out.Emotions)
			}
		})
	}
}

func TestEmotionNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP().Emotion(context.Background(), srv.URL, "x")
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("err=%v", err)
	}
}

func TestEmotionEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := NewHTTP().Emotion(context.Background(), srv.URL, "x"); err == nil {
		t.Fatal("expected decode error")
	}
}
