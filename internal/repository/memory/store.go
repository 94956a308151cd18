// Package memory is an in-process repository.Store used when no database is
// configured and throughout the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/repository"
	apperrors "github.com/outagetrack/outage-service/pkg/util/errorutil"
)

type userRecord struct {
	user domain.User
	seq  int64
}

type locationRecord struct {
	loc domain.Location
	seq int64
}

type updateRecord struct {
	update domain.LocationUpdate
	seq    int64
}

// state is one consistent copy of every table.
type state struct {
	mu        sync.RWMutex
	users     map[string]userRecord
	locations map[string]locationRecord
	updates   map[string]updateRecord
	seq       int64
}

func newState() *state {
	return &state{
		users:     make(map[string]userRecord),
		locations: make(map[string]locationRecord),
		updates:   make(map[string]updateRecord),
	}
}

// clone copies the maps. Stored values are never mutated in place, so sharing
// their pointer fields between copies is safe.
func (st *state) clone() *state {
	st.mu.RLock()
	defer st.mu.RUnlock()
	cp := &state{
		users:     make(map[string]userRecord, len(st.users)),
		locations: make(map[string]locationRecord, len(st.locations)),
		updates:   make(map[string]updateRecord, len(st.updates)),
		seq:       st.seq,
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	for k, v := range st.locations {
		cp.locations[k] = v
	}
	for k, v := range st.updates {
		cp.updates[k] = v
	}
	return cp
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store keeps all data in memory. Transactions run against a private copy of
// the state that replaces the live one only when the callback succeeds.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	cur  *state
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		cur: newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Repos returns repositories operating directly on the live state.
func (s *Store) Repos() repository.Repositories {
	return s.bind(nil)
}

// WithinTransaction serializes units of work and discards the copy on error.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.current().clone()
	if err := fn(ctx, s.bind(snapshot)); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Store) bind(tx *state) repository.Repositories {
	h := &handle{store: s, tx: tx}
	return repository.Repositories{
		Users:     &userRepo{h},
		Locations: &locationRepo{h},
		Updates:   &updateRepo{h},
	}
}

// handle routes reads and writes either to a transaction copy or to the live state.
type handle struct {
	store *Store
	tx    *state
}

func (h *handle) read(fn func(st *state) error) error {
	st := h.tx
	if st == nil {
		st = h.store.current()
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(st)
}

func (h *handle) write(fn func(st *state) error) error {
	st := h.tx
	if st == nil {
		h.store.txMu.Lock()
		defer h.store.txMu.Unlock()
		st = h.store.current()
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st)
}

func (h *handle) now() time.Time {
	return h.store.now()
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, apperrors.ErrNoRecord)
}

func window[T any](items []T, limit, offset int) []T {
	limit, offset = repository.NormalizePage(limit, offset)
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

type userRepo struct{ h *handle }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	return r.h.write(func(st *state) error {
		if user.ID == "" {
			user.ID = repository.NewID()
		}
		if _, exists := st.users[user.ID]; exists || emailTaken(st, user.Email, "") {
			return fmt.Errorf("create user: %w", apperrors.ErrDuplicate)
		}
		now := r.h.now()
		user.DateJoined = now
		user.UpdatedAt = now
		st.users[user.ID] = userRecord{user: *user, seq: st.next()}
		return nil
	})
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	return r.h.write(func(st *state) error {
		rec, ok := st.users[user.ID]
		if !ok {
			return notFound("update user")
		}
		if emailTaken(st, user.Email, user.ID) {
			return fmt.Errorf("update user: %w", apperrors.ErrDuplicate)
		}
		user.DateJoined = rec.user.DateJoined
		user.UpdatedAt = r.h.now()
		rec.user = *user
		st.users[user.ID] = rec
		return nil
	})
}

// Delete removes the user and clears every reference to it, matching the
// ON DELETE SET NULL foreign keys of the relational schema.
func (r *userRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return notFound("delete user")
		}
		delete(st.users, id)
		for key, rec := range st.locations {
			changed := false
			loc := rec.loc.Clone()
			if loc.AssignedToID != nil && *loc.AssignedToID == id {
				loc.AssignedToID = nil
				changed = true
			}
			if loc.ReportedByID != nil && *loc.ReportedByID == id {
				loc.ReportedByID = nil
				changed = true
			}
			if changed {
				rec.loc = *loc
				st.locations[key] = rec
			}
		}
		for key, rec := range st.updates {
			if rec.update.UpdatedByID != nil && *rec.update.UpdatedByID == id {
				rec.update.UpdatedByID = nil
				st.updates[key] = rec
			}
		}
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.h.read(func(st *state) error {
		rec, ok := st.users[id]
		if !ok {
			return notFound("get user")
		}
		u := rec.user
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	var out *domain.User
	err := r.h.read(func(st *state) error {
		for _, rec := range st.users {
			if domain.NormalizeEmail(rec.user.Email) == email {
				u := rec.user
				out = &u
				return nil
			}
		}
		return notFound("get user")
	})
	return out, err
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var (
		page  []domain.User
		total int
	)
	err := r.h.read(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(filter.Search))
		matched := make([]userRecord, 0, len(st.users))
		for _, rec := range st.users {
			u := rec.user
			if !filter.Scope.Matches(&u) {
				continue
			}
			if len(filter.Roles) > 0 && !hasRole(filter.Roles, u.Role) {
				continue
			}
			if term != "" && !containsFold(u.Email, term) && !containsFold(u.FirstName, term) && !containsFold(u.LastName, term) {
				continue
			}
			matched = append(matched, rec)
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
		total = len(matched)
		for _, rec := range window(matched, filter.Limit, filter.Offset) {
			page = append(page, rec.user)
		}
		return nil
	})
	return page, total, err
}

func emailTaken(st *state, email, exceptID string) bool {
	email = domain.NormalizeEmail(email)
	for id, rec := range st.users {
		if id != exceptID && domain.NormalizeEmail(rec.user.Email) == email {
			return true
		}
	}
	return false
}

func hasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type locationRepo struct{ h *handle }

func (r *locationRepo) Create(_ context.Context, loc *domain.Location) error {
	return r.h.write(func(st *state) error {
		if loc.ID == "" {
			loc.ID = repository.NewID()
		}
		if _, exists := st.locations[loc.ID]; exists {
			return fmt.Errorf("create location: %w", apperrors.ErrDuplicate)
		}
		now := r.h.now()
		loc.CreatedAt = now
		loc.UpdatedAt = now
		if loc.ReportedAt.IsZero() {
			loc.ReportedAt = now
		}
		stored := loc.Clone()
		stored.AssignedTo, stored.ReportedBy = nil, nil
		st.locations[loc.ID] = locationRecord{loc: *stored, seq: st.next()}
		return nil
	})
}

func (r *locationRepo) Update(_ context.Context, loc *domain.Location) error {
	return r.h.write(func(st *state) error {
		rec, ok := st.locations[loc.ID]
		if !ok {
			return notFound("update location")
		}
		loc.CreatedAt = rec.loc.CreatedAt
		loc.UpdatedAt = r.h.now()
		stored := loc.Clone()
		stored.AssignedTo, stored.ReportedBy = nil, nil
		rec.loc = *stored
		st.locations[loc.ID] = rec
		return nil
	})
}

// Delete removes the location together with its audit trail.
func (r *locationRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.locations[id]; !ok {
			return notFound("delete location")
		}
		delete(st.locations, id)
		for key, rec := range st.updates {
			if rec.update.LocationID == id {
				delete(st.updates, key)
			}
		}
		return nil
	})
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*domain.Location, error) {
	var out *domain.Location
	err := r.h.read(func(st *state) error {
		rec, ok := st.locations[id]
		if !ok {
			return notFound("get location")
		}
		out = hydrate(st, rec.loc)
		return nil
	})
	return out, err
}

func (r *locationRepo) List(_ context.Context, filter repository.LocationFilter) ([]domain.Location, int, error) {
	var (
		page  []domain.Location
		total int
	)
	err := r.h.read(func(st *state) error {
		term := ""
		if filter.SearchTerm != nil {
			term = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		}
		type candidate struct {
			loc *domain.Location
			seq int64
		}
		matched := make([]candidate, 0, len(st.locations))
		for _, rec := range st.locations {
			loc := hydrate(st, rec.loc)
			if !filter.Scope.Matches(loc) {
				continue
			}
			if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, loc.Status) {
				continue
			}
			if len(filter.Priorities) > 0 && !hasPriority(filter.Priorities, loc.Priority) {
				continue
			}
			if filter.AssignedToID != nil && !(loc.AssignedToID != nil && *loc.AssignedToID == *filter.AssignedToID) {
				continue
			}
			if term != "" && !containsFold(loc.Name, term) && !containsFold(loc.Address, term) && !containsFold(loc.City, term) {
				continue
			}
			matched = append(matched, candidate{loc: loc, seq: rec.seq})
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
		total = len(matched)
		for _, c := range window(matched, filter.Limit, filter.Offset) {
			page = append(page, *c.loc)
		}
		return nil
	})
	return page, total, err
}

// hydrate returns a detached copy of loc with its assignee and reporter attached.
func hydrate(st *state, loc domain.Location) *domain.Location {
	out := loc.Clone()
	out.AssignedTo = lookupUser(st, out.AssignedToID)
	out.ReportedBy = lookupUser(st, out.ReportedByID)
	return out
}

func lookupUser(st *state, id *string) *domain.User {
	if id == nil {
		return nil
	}
	rec, ok := st.users[*id]
	if !ok {
		return nil
	}
	u := rec.user
	u.PasswordHash = ""
	return &u
}

func hasStatus(statuses []domain.LocationStatus, s domain.LocationStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func hasPriority(priorities []domain.LocationPriority, p domain.LocationPriority) bool {
	for _, v := range priorities {
		if v == p {
			return true
		}
	}
	return false
}

type updateRepo struct{ h *handle }

func (r *updateRepo) Create(_ context.Context, update *domain.LocationUpdate) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.locations[update.LocationID]; !ok {
			return notFound("create location update")
		}
		if update.ID == "" {
			update.ID = repository.NewID()
		}
		update.CreatedAt = r.h.now()
		stored := *update
		stored.UpdatedBy = nil
		st.updates[update.ID] = updateRecord{update: stored, seq: st.next()}
		return nil
	})
}

func (r *updateRepo) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]domain.LocationUpdate, int, error) {
	var (
		page  []domain.LocationUpdate
		total int
	)
	err := r.h.read(func(st *state) error {
		matched := make([]updateRecord, 0)
		for _, rec := range st.updates {
			if rec.update.LocationID == locationID {
				matched = append(matched, rec)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
		total = len(matched)
		for _, rec := range window(matched, limit, offset) {
			u := rec.update
			u.UpdatedBy = lookupUser(st, u.UpdatedByID)
			page = append(page, u)
		}
		return nil
	})
	return page, total, err
}
