package fakesessionrepo

import (
	"sync"

	"github.com/jrsteele09/go-travels-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	session *sessions.Session
	saves   int
	clears  int
	lock    sync.RWMutex

	// LoadErr, SaveErr and ClearErr are returned by the matching call when set
	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo that already holds session.
func NewFakeSessionRepoWith(session sessions.Session) *FakeSessionRepo {
	return &FakeSessionRepo{session: &session}
}

func (sr *FakeSessionRepo) Load() (sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.LoadErr != nil {
		return sessions.Session{}, sr.LoadErr
	}
	if sr.session == nil {
		return sessions.Session{}, nil
	}
	return *sr.session, nil
}

func (sr *FakeSessionRepo) Save(session sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.saves++
	if sr.SaveErr != nil {
		return sr.SaveErr
	}
	sr.session = &session
	return nil
}

func (sr *FakeSessionRepo) Clear() error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.clears++
	if sr.ClearErr != nil {
		return sr.ClearErr
	}
	sr.session = nil
	return nil
}

// Saves returns how many times Save was called.
func (sr *FakeSessionRepo) Saves() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.saves
}

// Clears returns how many times Clear was called.
func (sr *FakeSessionRepo) Clears() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.clears
}
