package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	reservationserrors "venuebook/internal/reservations/errors"
	"venuebook/internal/reservations/repository"
	venueserrors "venuebook/internal/venues/errors"
	mongotx "venuebook/pkg/db/mongo"
	"venuebook/pkg/model"
)

// fakeRepository keeps reservations in insertion order and enforces the
// same compare-and-set rules as the Mongo implementation.
type fakeRepository struct {
	mu    sync.Mutex
	items []*model.Reservation
	seq   int
}

func clone(r *model.Reservation) *model.Reservation {
	c := *r
	return &c
}

func (f *fakeRepository) Create(ctx context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("%024x", f.seq)
	}
	f.items = append(f.items, clone(r))
	return nil
}

func (f *fakeRepository) lookup(id string) *model.Reservation {
	for _, r := range f.items {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.lookup(id); r != nil {
		return clone(r), nil
	}
	return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
}

func (f *fakeRepository) filter(keep func(*model.Reservation) bool) []*model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Reservation{}
	for _, r := range f.items {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	return out
}

func (f *fakeRepository) FindByVenueAndDate(ctx context.Context, venueID, date string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool { return r.VenueID == venueID && r.Date == date }), nil
}

func (f *fakeRepository) FindByVenueAndDateRange(ctx context.Context, venueID, from, to string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool {
		return r.VenueID == venueID && r.Date >= from && r.Date <= to && r.IsActive()
	}), nil
}

func (f *fakeRepository) FindByRequester(ctx context.Context, requesterID, status string, limit int) ([]*model.Reservation, error) {
	out := f.filter(func(r *model.Reservation) bool {
		return r.RequesterID == requesterID && (status == "" || r.Status == status)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out[:min(limit, len(out))], nil
}

func (f *fakeRepository) FindPending(ctx context.Context, limit int) ([]*model.Reservation, error) {
	out := f.filter(func(r *model.Reservation) bool { return r.Status == model.StatusProvisional })
	return out[:min(limit, len(out))], nil
}

func (f *fakeRepository) FindProvisionalCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	out := f.filter(func(r *model.Reservation) bool {
		return r.Status == model.StatusProvisional && r.CreatedAt.Before(cutoff)
	})
	return out[:min(limit, len(out))], nil
}

func (f *fakeRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	counts := map[string]int64{}
	for _, r := range f.filter(func(*model.Reservation) bool { return true }) {
		counts[r.Status]++
	}
	out := []model.StatusCount{}
	for status, n := range counts {
		out = append(out, model.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (f *fakeRepository) Transition(ctx context.Context, id string, change repository.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.lookup(id)
	if r == nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	if r.Status != change.From || (change.Code != "" && r.Code != change.Code) {
		return fmt.Errorf("%w: %s", reservationserrors.ErrStatusChanged, id)
	}
	change.Apply(r)
	return nil
}

func (f *fakeRepository) SetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.lookup(id)
	if r == nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	if r.Status != model.StatusProvisional {
		return fmt.Errorf("%w: %s", reservationserrors.ErrStatusChanged, id)
	}
	r.Code = code
	r.CodeExpiresAt = &expiresAt
	return nil
}

func (f *fakeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func (f *fakeRepository) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(id).Status
}

// fakeLocks is an in-process advisory lock table.
type fakeLocks struct {
	mu       sync.Mutex
	held     map[string]string
	seq      int
	released int
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: map[string]string{}}
}

func (l *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
	}
	l.seq++
	owner := fmt.Sprintf("owner-%d", l.seq)
	l.held[key] = owner
	return owner, nil
}

func (l *fakeLocks) Release(ctx context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == owner {
		delete(l.held, key)
		l.released++
	}
	return nil
}

type fakeVenues map[string]*model.Venue

func (v fakeVenues) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	if venue, ok := v[id]; ok {
		return venue, nil
	}
	return nil, fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (c *captureNotifier) Notify(ctx context.Context, n model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return c.err
}

func (c *captureNotifier) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, n := range c.sent {
		out = append(out, n.EventType)
	}
	return out
}

var errBoom = errors.New("boom")
