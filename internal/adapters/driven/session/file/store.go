// Package file persists session transcripts as one JSON file per session.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	configfile "github.com/custodia-labs/vidhi/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

const fileExt = ".json"

// Store writes <dir>/<id>.json, each holding the ordered turn array.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at dir.
// If dir is empty, uses <config dir>/sessions.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := configfile.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "sessions")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the sessions directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save rewrites the session file with the full transcript.
func (s *Store) Save(_ context.Context, session *domain.Session) error {
	if session == nil {
		return fmt.Errorf("save session: %w", domain.ErrInvalidInput)
	}
	if err := validID(session.ID); err != nil {
		return err
	}

	turns := session.Turns
	if turns == nil {
		turns = []domain.Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(session.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads one transcript.
func (s *Store) Load(_ context.Context, id string) (*domain.Session, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path(id))
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	return &domain.Session{ID: id, Turns: turns}, nil
}

// List returns summaries of all stored sessions, newest first.
// Files that cannot be parsed are skipped.
func (s *Store) List(ctx context.Context) ([]domain.SessionSummary, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]domain.SessionSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), fileExt)
		started, err := domain.SessionStartedAt(id)
		if err != nil {
			continue
		}
		session, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, domain.SessionSummary{
			ID:        id,
			StartedAt: started,
			Turns:     len(session.Turns),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].StartedAt.Equal(summaries[j].StartedAt) {
			return summaries[i].StartedAt.After(summaries[j].StartedAt)
		}
		return summaries[i].ID > summaries[j].ID
	})
	return summaries, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("session id %q: %w", id, domain.ErrInvalidInput)
	}
	return nil
}
