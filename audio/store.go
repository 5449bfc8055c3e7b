// Package audio stores uploaded answer recordings and converts them into the
// PCM format the speech-to-text engines expect.
package audio

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maastricht-university/interview-coach/failure"
)

const defaultExt = ".webm"

// Store writes uploads into a temp directory under unique names.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

func (s *Store) Dir() string { return s.dir }

// Save copies r into <dir>/<unix-nanos>-<rand><ext> and returns the absolute
// path. hint is a filename or a MIME type.
func (s *Store) Save(r io.Reader, hint string) (string, error) {
	if r == nil {
		return "", failure.Wrapf(failure.Storage, "no audio data")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", failure.Wrap(failure.Storage, fmt.Errorf("mkdir %s: %w", s.dir, err))
	}

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), rand.Int63(), extFor(hint))
	path, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", failure.Wrap(failure.Storage, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", failure.Wrap(failure.Storage, fmt.Errorf("create %s: %w", name, err))
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", failure.Wrap(failure.Storage, fmt.Errorf("write %s: %w", name, err))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", failure.Wrap(failure.Storage, fmt.Errorf("close %s: %w", name, err))
	}
	return path, nil
}

// Remove deletes every path, ignoring empty and already-missing ones.
func (s *Store) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func extFor(hint string) string {
	hint = strings.TrimSpace(strings.ToLower(hint))
	if hint == "" {
		return defaultExt
	}
	if strings.Contains(hint, "/") {
		mt, _, err := mime.ParseMediaType(hint)
		if err == nil {
			switch mt {
			case "audio/webm", "video/webm":
				return ".webm"
			case "audio/ogg":
				return ".ogg"
			case "audio/wav", "audio/x-wav", "audio/wave":
				return ".wav"
			case "audio/mpeg", "audio/mp3":
				return ".mp3"
			case "audio/mp4", "audio/m4a", "audio/x-m4a":
				return ".m4a"
			}
		}
		if filepath.Ext(hint) == "" {
			return defaultExt
		}
	}
	ext := filepath.Ext(hint)
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, `/\ `) {
		return defaultExt
	}
	return ext
}
