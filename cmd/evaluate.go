package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/interview-coach/orchestrator"
)

type evaluateFlags struct {
	audio      string
	question   string
	domain     string
	experience string
	posture    string
	facial     string
}

func newEvaluateCommand(a *app) *cobra.Command {
	var f evaluateFlags
	c := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one recorded answer and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posture, err := readTelemetry(f.posture)
			if err != nil {
				return err
			}
			facial, err := readTelemetry(f.facial)
			if err != nil {
				return err
			}

			in, err := os.Open(f.audio)
			if err != nil {
				return err
			}
			defer in.Close()

			p, err := orchestrator.NewPipeline(a.conf, a.log)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), orchestrator.Submission{
				RequestID:  uuid.NewString(),
				Audio:      in,
				AudioHint:  filepath.Base(f.audio),
				Question:   f.question,
				Domain:     f.domain,
				Experience: f.experience,
				Posture:    posture,
				Facial:     facial,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Body())
		},
	}

	fl := c.Flags()
	fl.StringVar(&f.audio, "audio", "", "recorded answer (webm, ogg, mp3, m4a, wav)")
	fl.StringVar(&f.question, "question", "", "interview question that was answered")
	fl.StringVar(&f.domain, "domain", "", "job domain, e.g. \"Software Engineering\"")
	fl.StringVar(&f.experience, "experience", "", "candidate experience level, e.g. Junior")
	fl.StringVar(&f.posture, "posture", "", "JSON file with posture telemetry")
	fl.StringVar(&f.facial, "facial", "", "JSON file with facial emotion telemetry")
	_ = c.MarkFlagRequired("audio")
	return c
}

// readTelemetry loads an optional JSON file. An empty path means no data.
func readTelemetry(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("%s: not valid JSON", path)
	}
	return json.RawMessage(b), nil
}
