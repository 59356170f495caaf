package registration

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store persists registrations.
type Store interface {
	// Create inserts r. It returns ErrAlreadyRegistered when the event
	// already has a registration for r.Email and ErrDuplicateCode when
	// r.Code is taken.
	Create(ctx context.Context, r *Registration) error

	// ByCode returns the registration with code, or ErrNotFound.
	ByCode(ctx context.Context, code string) (*Registration, error)

	// ByEventEmail returns the registration of email for eventID, or ErrNotFound.
	ByEventEmail(ctx context.Context, eventID, email string) (*Registration, error)

	// CodeExists reports whether code is allocated.
	CodeExists(ctx context.Context, code string) (bool, error)

	// MarkAttended sets the registration's status to attended. The first
	// attendance time is kept on repeated calls, and first is true only for
	// the call that stamped it, however many run concurrently.
	MarkAttended(ctx context.Context, code string, at time.Time) (reg *Registration, first bool, err error)

	// List returns the registrations of eventID, newest first.
	// An empty eventID lists every event.
	List(ctx context.Context, eventID string) ([]*Registration, error)

	// Close releases the store.
	Close(ctx context.Context) error
}

// MemoryStore keeps registrations in process memory.
// It backs the CLI, tests and single-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	byCode map[string]*Registration
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCode: make(map[string]*Registration)}
}

func (s *MemoryStore) Create(_ context.Context, r *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[r.Code]; ok {
		return ErrDuplicateCode
	}
	for _, existing := range s.byCode {
		if existing.Event.ID == r.Event.ID && existing.Email == r.Email {
			return ErrAlreadyRegistered
		}
	}
	s.byCode[r.Code] = r.clone()
	return nil
}

func (s *MemoryStore) ByCode(_ context.Context, code string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

func (s *MemoryStore) ByEventEmail(_ context.Context, eventID, email string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.byCode {
		if r.Event.ID == eventID && r.Email == email {
			return r.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCode[code]
	return ok, nil
}

func (s *MemoryStore) MarkAttended(_ context.Context, code string, at time.Time) (*Registration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byCode[code]
	if !ok {
		return nil, false, ErrNotFound
	}
	first := r.AttendedAt == nil
	if first {
		t := at
		r.AttendedAt = &t
	}
	r.Status = StatusAttended
	return r.clone(), first, nil
}

func (s *MemoryStore) List(_ context.Context, eventID string) ([]*Registration, error) {
	s.mu.RLock()
	out := make([]*Registration, 0, len(s.byCode))
	for _, r := range s.byCode {
		if eventID == "" || r.Event.ID == eventID {
			out = append(out, r.clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
