package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	errs "github.com/brokerdeck/go-broker-client/internal/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo persists the credential store as a small JSON key/value file so a
// session survives process restarts. Tokens are written with 0600 permissions.
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileRepo opens (or creates) the credential file at path.
func NewFileRepo(path string) (*FileRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrapf(err, "[NewFileRepo] creating data dir")
		}
	}
	r := &FileRepo{
		path:   path,
		values: map[string]string{},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.values = map[string]string{}
			return nil
		}
		return errs.Wrapf(err, "[FileRepo load] reading %s", r.path)
	}
	loaded := map[string]string{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		return errs.Wrapf(err, "[FileRepo load] parsing %s", r.path)
	}
	r.values = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.values, "", "  ")
	if err != nil {
		return errs.Wrapf(err, "[FileRepo save] marshalling")
	}
	if err := os.WriteFile(r.path, b, 0o600); err != nil {
		return errs.Wrapf(err, "[FileRepo save] writing %s", r.path)
	}
	return nil
}

func (r *FileRepo) Get() (*Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred := Credential{
		AccessToken:  r.values[KeyAccessToken],
		RefreshToken: r.values[KeyRefreshToken],
		UserEmail:    r.values[KeyUserEmail],
	}
	if !cred.Complete() {
		return nil, nil
	}
	return &cred, nil
}

func (r *FileRepo) Set(cred Credential) error {
	if !cred.Complete() {
		return errs.Wrapf(errs.ErrInternal, "[FileRepo Set] incomplete credential")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[KeyAccessToken] = cred.AccessToken
	r.values[KeyRefreshToken] = cred.RefreshToken
	r.values[KeyUserEmail] = cred.UserEmail
	return r.saveLocked()
}

func (r *FileRepo) UpdateTokens(accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return errs.Wrapf(errs.ErrInternal, "[FileRepo UpdateTokens] empty token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values[KeyUserEmail] == "" {
		return errs.ErrNoCredential
	}
	r.values[KeyAccessToken] = accessToken
	r.values[KeyRefreshToken] = refreshToken
	return r.saveLocked()
}

func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, KeyAccessToken)
	delete(r.values, KeyRefreshToken)
	delete(r.values, KeyUserEmail)
	return r.saveLocked()
}

func (r *FileRepo) AccessToken() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[KeyAccessToken]
}

func (r *FileRepo) SelectedBroker() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[KeySelectedBroker]
}

func (r *FileRepo) SetSelectedBroker(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[KeySelectedBroker] = id
	return r.saveLocked()
}

func (r *FileRepo) ClearSelectedBroker() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, KeySelectedBroker)
	return r.saveLocked()
}
