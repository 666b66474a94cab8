package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	perrors "github.com/mattsolo1/grove-pilot/errors"
	"github.com/mattsolo1/grove-pilot/logging"
)

// Store persists sessions and checkpoints as JSON files under a base
// directory, conventionally `.pilot` at the project root:
//
//	<base>/sessions/session-<id>.json
//	<base>/sessions/current.json
//	<base>/sessions/checkpoint-<id>.json
//	<base>/backup/sessions-backup-<timestamp>/
//
// Saving a session writes both the per-session file and the current-session
// pointer. The two writes are not transactional; a crash between them can
// leave current.json pointing at a stale session, which the next Start
// repairs by overwriting it.
type Store struct {
	baseDir string
	log     *logrus.Entry
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		log:     logging.NewLogger("store"),
	}
}

// SessionsDir returns the directory holding session and checkpoint files.
func (s *Store) SessionsDir() string {
	return filepath.Join(s.baseDir, "sessions")
}

// BackupDir returns the directory that CleanHistory moves history into.
func (s *Store) BackupDir() string {
	return filepath.Join(s.baseDir, "backup")
}

// SessionPath returns the file path for a session ID.
func (s *Store) SessionPath(id string) string {
	return filepath.Join(s.SessionsDir(), fmt.Sprintf("session-%s.json", id))
}

// CheckpointPath returns the file path for a checkpoint ID.
func (s *Store) CheckpointPath(id string) string {
	return filepath.Join(s.SessionsDir(), fmt.Sprintf("checkpoint-%s.json", id))
}

// CurrentPath returns the path of the current-session pointer file.
func (s *Store) CurrentPath() string {
	return filepath.Join(s.SessionsDir(), "current.json")
}

// EnsureDirectories creates the sessions directory if needed.
func (s *Store) EnsureDirectories() error {
	if err := os.MkdirAll(s.SessionsDir(), 0755); err != nil {
		return perrors.Persistence("ensure directories", s.SessionsDir(), err)
	}
	return nil
}

// Initialized reports whether the sessions directory exists.
func (s *Store) Initialized() bool {
	info, err := os.Stat(s.SessionsDir())
	return err == nil && info.IsDir()
}

// SaveSession writes the session to its own file and to the current-session
// pointer. Both files hold the full serialized session.
func (s *Store) SaveSession(sess *Session) error {
	if err := s.EnsureDirectories(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return perrors.Persistence("marshal session", s.SessionPath(sess.ID), err)
	}

	if err := os.WriteFile(s.SessionPath(sess.ID), data, 0644); err != nil {
		return perrors.Persistence("write session", s.SessionPath(sess.ID), err)
	}
	if err := os.WriteFile(s.CurrentPath(), data, 0644); err != nil {
		return perrors.Persistence("write current session", s.CurrentPath(), err)
	}

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"status":  sess.Status,
	}).Debug("Saved session")

	return nil
}

// SaveCheckpoint writes a checkpoint to its own file. Checkpoint files are
// append-only artifacts; an existing file is never rewritten with different
// content because checkpoint IDs are unique.
func (s *Store) SaveCheckpoint(cp *Checkpoint) error {
	if err := s.EnsureDirectories(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return perrors.Persistence("marshal checkpoint", s.CheckpointPath(cp.ID), err)
	}

	if err := os.WriteFile(s.CheckpointPath(cp.ID), data, 0644); err != nil {
		return perrors.Persistence("write checkpoint", s.CheckpointPath(cp.ID), err)
	}

	return nil
}

// LoadSession reads a session by ID.
func (s *Store) LoadSession(id string) (*Session, error) {
	data, err := os.ReadFile(s.SessionPath(id))
	if err != nil {
		return nil, perrors.Persistence("read session", s.SessionPath(id), err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, perrors.Persistence("parse session", s.SessionPath(id), err)
	}
	return &sess, nil
}

// LoadCurrent reads the current-session pointer. A missing pointer means no
// session has been persisted; that is not an error.
func (s *Store) LoadCurrent() (*Session, error) {
	data, err := os.ReadFile(s.CurrentPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, perrors.Persistence("read current session", s.CurrentPath(), err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, perrors.Persistence("parse current session", s.CurrentPath(), err)
	}
	return &sess, nil
}

// CleanHistory moves all session history into a timestamped backup directory
// and returns the backup path. Requires force: history is user data, so the
// caller must confirm before it is swept aside.
func (s *Store) CleanHistory(force bool) (string, error) {
	if !force {
		return "", perrors.New(perrors.ErrCodeInvalidInput,
			"refusing to clean session history without --force")
	}

	if !s.Initialized() {
		return "", nil
	}

	entries, err := os.ReadDir(s.SessionsDir())
	if err != nil {
		return "", perrors.Persistence("read sessions directory", s.SessionsDir(), err)
	}
	if len(entries) == 0 {
		return "", nil
	}

	backupPath := filepath.Join(s.BackupDir(),
		fmt.Sprintf("sessions-backup-%s", time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(backupPath, 0755); err != nil {
		return "", perrors.Persistence("create backup directory", backupPath, err)
	}

	// Copy first, remove after: an interrupted clean leaves duplicates, not
	// data loss.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(s.SessionsDir(), entry.Name())
		dst := filepath.Join(backupPath, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return "", perrors.Persistence("backup session file", src, err)
		}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.SessionsDir(), entry.Name())
		if err := os.Remove(path); err != nil {
			return "", perrors.Persistence("remove session file", path, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"backup": backupPath,
		"files":  len(entries),
	}).Info("Cleaned session history")

	return backupPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
