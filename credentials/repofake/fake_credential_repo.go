package repofake

import (
	"sync"

	"github.com/brokerdeck/go-broker-client/credentials"
	errs "github.com/brokerdeck/go-broker-client/internal/errors"
)

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

// FakeCredentialRepo is an in-memory credential store for tests.
type FakeCredentialRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{
		values: map[string]string{},
	}
}

func (r *FakeCredentialRepo) Get() (*credentials.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred := credentials.Credential{
		AccessToken:  r.values[credentials.KeyAccessToken],
		RefreshToken: r.values[credentials.KeyRefreshToken],
		UserEmail:    r.values[credentials.KeyUserEmail],
	}
	if !cred.Complete() {
		return nil, nil
	}
	return &cred, nil
}

func (r *FakeCredentialRepo) Set(cred credentials.Credential) error {
	if !cred.Complete() {
		return errs.Wrapf(errs.ErrInternal, "[FakeCredentialRepo Set] incomplete credential")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[credentials.KeyAccessToken] = cred.AccessToken
	r.values[credentials.KeyRefreshToken] = cred.RefreshToken
	r.values[credentials.KeyUserEmail] = cred.UserEmail
	return nil
}

func (r *FakeCredentialRepo) UpdateTokens(accessToken, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values[credentials.KeyUserEmail] == "" {
		return errs.ErrNoCredential
	}
	r.values[credentials.KeyAccessToken] = accessToken
	r.values[credentials.KeyRefreshToken] = refreshToken
	return nil
}

func (r *FakeCredentialRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, credentials.KeyAccessToken)
	delete(r.values, credentials.KeyRefreshToken)
	delete(r.values, credentials.KeyUserEmail)
	return nil
}

func (r *FakeCredentialRepo) AccessToken() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[credentials.KeyAccessToken]
}

func (r *FakeCredentialRepo) SelectedBroker() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[credentials.KeySelectedBroker]
}

func (r *FakeCredentialRepo) SetSelectedBroker(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[credentials.KeySelectedBroker] = id
	return nil
}

func (r *FakeCredentialRepo) ClearSelectedBroker() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, credentials.KeySelectedBroker)
	return nil
}
