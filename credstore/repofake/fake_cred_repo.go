// Package repofake provides an in-memory credstore.Repo for tests.
package repofake

import (
	"sync"

	"github.com/erpinterno/erpadmin/credstore"
)

// FakeCredRepo is an in-memory credstore.Repo. Errors can be injected to
// exercise failure paths.
type FakeCredRepo struct {
	mu      sync.Mutex
	cred    *credstore.Credential
	profile *credstore.Profile

	WriteErr error
	ReadErr  error
	ClearErr error

	Writes int
	Clears int
}

// NewFakeCredRepo creates an empty fake repo.
func NewFakeCredRepo() *FakeCredRepo {
	return &FakeCredRepo{}
}

func (f *FakeCredRepo) Write(cred *credstore.Credential, profile *credstore.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if cred == nil {
		return credstore.ErrNoCredential
	}
	f.Writes++
	c := *cred
	f.cred = &c
	if profile != nil {
		p := *profile
		f.profile = &p
	} else {
		f.profile = nil
	}
	return nil
}

func (f *FakeCredRepo) Read() (*credstore.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	if f.cred == nil || f.cred.Token == "" {
		return nil, nil
	}
	c := *f.cred
	return &c, nil
}

func (f *FakeCredRepo) ReadProfile() (*credstore.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	if f.profile == nil {
		return nil, nil
	}
	p := *f.profile
	return &p, nil
}

func (f *FakeCredRepo) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.Clears++
	f.cred = nil
	f.profile = nil
	return nil
}

var _ credstore.Repo = (*FakeCredRepo)(nil)
