package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type PersistBundle struct {
	SessionID   string    `json:"session_id"`
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Domain      string    `json:"domain,omitempty"`
	Experience  string    `json:"experience,omitempty"`
	Answer      *Answer   `json:"answer"`
}

// Archive keeps a JSON copy of every completed evaluation under
// <root>/session_<timestamp>_<id>/report.json. Audio is never archived.
type Archive struct {
	root string
}

func NewArchive(root string) *Archive { return &Archive{root: root} }

func mkSessionDir(outputsRoot, id string) (string, string, error) {
	ts := time.Now().Format("20060102-150405")
	sid := "session_" + ts + "_" + id
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Save writes the answer and returns the report path.
func (a *Archive) Save(sub Submission, ans *Answer) (string, error) {
	// request ids may come from a client header; only trust well-formed ones in paths
	id := uuid.NewString()
	if u, err := uuid.Parse(sub.RequestID); err == nil {
		id = u.String()
	}
	sid, outDir, err := mkSessionDir(a.root, id)
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, "report.json")
	bundle := PersistBundle{
		SessionID:   sid,
		RequestID:   sub.RequestID,
		GeneratedAt: time.Now(),
		Domain:      sub.Domain,
		Experience:  sub.Experience,
		Answer:      ans,
	}
	if err := writeJSON(path, bundle); err != nil {
		return "", err
	}
	return path, nil
}
