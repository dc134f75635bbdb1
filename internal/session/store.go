package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/models"
)

// Session is the client's belief about who is signed in. Role is only
// meaningful while Token is present; the server remains the authority on
// whether the token is actually valid.
type Session struct {
	Token  string      `json:"auth_token"`
	Role   models.Role `json:"user_role"`
	UserID int64       `json:"user_id"`
}

// Present reports whether a token is held.
func (s Session) Present() bool { return s.Token != "" }

// document is the on-disk shape. The legacy fields cover session files
// written before the key names were unified.
type document struct {
	Token  string      `json:"auth_token"`
	Role   models.Role `json:"user_role"`
	UserID int64       `json:"user_id"`

	LegacyToken string      `json:"authToken,omitempty"`
	LegacyRole  models.Role `json:"role,omitempty"`
}

// Store persists the session to a single JSON document and notifies
// subscribers when it changes, including changes made by another process.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	subs    map[int]func(Session)
	nextSub int
	last    Session

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore opens (creating parent directories as needed) the session store at
// path and starts watching the file for external changes.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	s := &Store{
		path:   path,
		logger: logger,
		subs:   make(map[int]func(Session)),
		done:   make(chan struct{}),
	}
	s.last = s.read()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("session watcher unavailable, external changes detected lazily only", zap.Error(err))
		return s, nil
	}
	if err := watcher.Add(dir); err != nil {
		logger.Warn("session watcher could not watch directory", zap.Error(err))
		_ = watcher.Close()
		return s, nil
	}
	s.watcher = watcher
	go s.watch()
	return s, nil
}

// Get reads the current session. It always goes back to the file so state
// wiped by another process is observed on the next gate check.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.read()
	return s.last
}

// Token implements the adapter's token source. Reading at call time, not at
// construction, keeps credentials current across login/logout.
func (s *Store) Token() string {
	return s.Get().Token
}

// Set persists the session, transitioning the client to authenticated.
func (s *Store) Set(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(sess); err != nil {
		return err
	}
	s.fanOut(sess)
	return nil
}

// Clear removes the persisted session unconditionally.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.fanOut(Session{})
	return nil
}

// Subscribe registers fn to run on every observed session change. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close stops the file watcher.
func (s *Store) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Store) watch() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			s.mu.Lock()
			current := s.read()
			changed := current != s.last
			s.last = current
			if changed {
				s.fanOut(current)
			}
			s.mu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("session watcher error", zap.Error(err))
		}
	}
}

// fanOut must be called with mu held.
func (s *Store) fanOut(sess Session) {
	s.last = sess
	for _, fn := range s.subs {
		go fn(sess)
	}
}

func (s *Store) read() Session {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("session file unreadable, treating as signed out", zap.Error(err))
		return Session{}
	}
	sess := Session{Token: doc.Token, Role: doc.Role, UserID: doc.UserID}
	// Migrate pre-unification key names rather than dropping the session.
	if sess.Token == "" && doc.LegacyToken != "" {
		sess.Token = doc.LegacyToken
	}
	if sess.Role == "" && doc.LegacyRole != "" {
		sess.Role = doc.LegacyRole
	}
	return sess
}

func (s *Store) write(sess Session) error {
	raw, err := json.MarshalIndent(document{Token: sess.Token, Role: sess.Role, UserID: sess.UserID}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
