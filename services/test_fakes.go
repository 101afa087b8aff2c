package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvraman/suraksha/core"
)

// Test-only fakes implementing the core ports. They store records in maps
// and expose error fields for behavior injection.

// FakeProfileStore implements core.ProfileStore.
type FakeProfileStore struct {
	mu        sync.RWMutex
	profiles  map[string]*core.UserProfile
	getErr    error
	createErr error
	putErr    error

	createCalls int
	putCalls    int
}

func NewFakeProfileStore() *FakeProfileStore {
	return &FakeProfileStore{profiles: make(map[string]*core.UserProfile)}
}

func (f *FakeProfileStore) GetProfile(ctx context.Context, id string) (*core.UserProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, core.ErrProfileNotFound
	}
	return p, nil
}

func (f *FakeProfileStore) CreateProfile(ctx context.Context, p *core.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.profiles[p.ID]; exists {
		return core.ErrProfileExists
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *FakeProfileStore) PutProfile(ctx context.Context, p *core.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.profiles[p.ID] = p
	return nil
}

// Seed inserts a profile without counting as a write.
func (f *FakeProfileStore) Seed(p *core.UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
}

// FailGets makes every GetProfile return err until cleared with nil.
func (f *FakeProfileStore) FailGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

// FailCreates makes every CreateProfile return err until cleared with nil.
func (f *FakeProfileStore) FailCreates(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

// FailPuts makes every PutProfile return err until cleared with nil.
func (f *FakeProfileStore) FailPuts(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putErr = err
}

// FakeAccountStore implements core.AccountStore.
type FakeAccountStore struct {
	mu        sync.RWMutex
	accounts  map[string]*core.Account // key: email
	createErr error
	getErr    error
}

func NewFakeAccountStore() *FakeAccountStore {
	return &FakeAccountStore{accounts: make(map[string]*core.Account)}
}

func (f *FakeAccountStore) CreateAccount(ctx context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.accounts[a.Email]; exists {
		return core.ErrAccountExists
	}
	f.accounts[a.Email] = a
	return nil
}

func (f *FakeAccountStore) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.accounts[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return a, nil
}

// FakeIncidentStore implements core.IncidentStore.
type FakeIncidentStore struct {
	mu        sync.RWMutex
	incidents []*core.IncidentRecord
	createErr error
	updateErr error
}

func NewFakeIncidentStore() *FakeIncidentStore {
	return &FakeIncidentStore{}
}

func (f *FakeIncidentStore) CreateIncident(ctx context.Context, rec *core.IncidentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	rec.ID = uuid.NewString()
	rec.SubmittedAt = time.Now()
	f.incidents = append(f.incidents, rec)
	return nil
}

func (f *FakeIncidentStore) ListIncidents(ctx context.Context, kind core.IncidentKind) ([]*core.IncidentRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.IncidentRecord
	for _, rec := range f.incidents {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *FakeIncidentStore) UpdateIncidentStatus(ctx context.Context, id string, status core.IncidentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, rec := range f.incidents {
		if rec.ID == id {
			rec.Status = status
			return nil
		}
	}
	return core.ErrIncidentNotFound
}

// All returns a copy of everything written.
func (f *FakeIncidentStore) All() []*core.IncidentRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*core.IncidentRecord, len(f.incidents))
	copy(out, f.incidents)
	return out
}

// FakeCollectionSource implements core.CollectionSource. Each Watch gets
// its own channel; Emit fans a snapshot out to every live watcher of the
// collection.
type FakeCollectionSource struct {
	mu       sync.Mutex
	watchers map[string][]chan core.Snapshot
	watchErr error
}

func NewFakeCollectionSource() *FakeCollectionSource {
	return &FakeCollectionSource{watchers: make(map[string][]chan core.Snapshot)}
}

func (f *FakeCollectionSource) Watch(ctx context.Context, collection string) (<-chan core.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	ch := make(chan core.Snapshot, 8)
	f.watchers[collection] = append(f.watchers[collection], ch)

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		chans := f.watchers[collection]
		for i, c := range chans {
			if c == ch {
				f.watchers[collection] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Emit delivers a snapshot to every live watcher of the collection.
func (f *FakeCollectionSource) Emit(collection string, docs []core.Document) {
	snap := core.Snapshot{
		Collection: collection,
		Docs:       docs,
		ServerTime: time.Now(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.watchers[collection] {
		ch <- snap
	}
}

// WatcherCount reports how many live watchers a collection has.
func (f *FakeCollectionSource) WatcherCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers[collection])
}

// FakeLocator implements core.Locator.
type FakeLocator struct {
	mu    sync.Mutex
	fix   *core.Location
	err   error
	calls int
}

func NewFakeLocator(fix *core.Location, err error) *FakeLocator {
	return &FakeLocator{fix: fix, err: err}
}

func (f *FakeLocator) Locate(ctx context.Context, opts core.LocateOptions) (*core.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fix, nil
}

func (f *FakeLocator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeDialer implements core.Dialer and records the numbers dialed.
type FakeDialer struct {
	mu      sync.Mutex
	dialed  []string
	dialErr error
}

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

func (f *FakeDialer) Dial(number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dialErr != nil {
		return f.dialErr
	}
	f.dialed = append(f.dialed, number)
	return nil
}

func (f *FakeDialer) Dialed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.dialed))
	copy(out, f.dialed)
	return out
}
