package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// stateEnvelope mirrors the two storage keys of the original client: one
// entry for the raw token (plus scheme) and one for the serialized profile.
// Keeping them in a single document is what makes the pair write atomic.
type stateEnvelope struct {
	Credential *Credential `json:"credential,omitempty"`
	Profile    *Profile    `json:"current_user,omitempty"`
}

// FileRepo is a Repo backed by a JSON state file under the user's config
// directory. Writes go through a temp file and rename so a crash or a
// concurrent reader never sees a half-written pair.
type FileRepo struct {
	path   string
	sealer *sealer

	mu sync.Mutex
}

// FileRepoOption configures a FileRepo.
type FileRepoOption func(*FileRepo)

// WithSealKey seals the state file at rest with a key derived from the given
// passphrase. A disk file is more exposed than origin-scoped browser storage,
// so sealing is on by default in the shipped client.
func WithSealKey(passphrase string) FileRepoOption {
	return func(r *FileRepo) {
		if passphrase != "" {
			r.sealer = newSealer(passphrase)
		}
	}
}

// NewFileRepo creates a file-backed credential repo at path.
func NewFileRepo(path string, options ...FileRepoOption) (*FileRepo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("[NewFileRepo] state file path is required")
	}
	r := &FileRepo{path: path}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Write persists the credential and profile together.
func (r *FileRepo) Write(cred *Credential, profile *Profile) error {
	if cred == nil {
		return ErrNoCredential
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(&stateEnvelope{Credential: cred, Profile: profile})
}

// Read returns the stored credential, or nil when none is recorded.
func (r *FileRepo) Read() (*Credential, error) {
	env, err := r.load()
	if err != nil {
		return nil, err
	}
	if env == nil || env.Credential == nil || env.Credential.Token == "" {
		return nil, nil
	}
	return env.Credential, nil
}

// ReadProfile returns the stored profile, or nil when none is recorded.
func (r *FileRepo) ReadProfile() (*Profile, error) {
	env, err := r.load()
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, nil
	}
	return env.Profile, nil
}

// Clear removes both entries.
func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove state file")
	}
	return nil
}

func (r *FileRepo) load() (*stateEnvelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[FileRepo.load] read state file")
	}
	if len(b) == 0 {
		return nil, nil
	}
	if r.sealer != nil {
		if b, err = r.sealer.open(b); err != nil {
			return nil, err
		}
	}
	env := &stateEnvelope{}
	if err := json.Unmarshal(b, env); err != nil {
		return nil, errors.Wrap(err, "[FileRepo.load] decode state file")
	}
	return env, nil
}

func (r *FileRepo) persistLocked(env *stateEnvelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.persistLocked] encode state")
	}
	if r.sealer != nil {
		if b, err = r.sealer.seal(b); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo.persistLocked] mkdir state dir")
	}

	// Temp file + rename keeps the pair write atomic for readers.
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".erpadmin-state-*")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.persistLocked] create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileRepo.persistLocked] write temp file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileRepo.persistLocked] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileRepo.persistLocked] close temp file")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileRepo.persistLocked] rename temp file")
	}
	return nil
}

var _ Repo = (*FileRepo)(nil)
