// Package memory is an in-process implementation of the service stores.
// It backs DATABASE_URL=memory and the handler and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"workflow_api/internal/domain"
	"workflow_api/internal/repository"
)

type DB struct {
	mu      sync.RWMutex
	// one sequence per table, like BIGSERIAL
	seq     map[string]int64
	users   map[int64]domain.User
	clients map[int64]domain.Client
	tasks   map[int64]domain.Task
	now     func() time.Time
}

func New() *DB {
	return &DB{
		seq:     make(map[string]int64),
		users:   make(map[int64]domain.User),
		clients: make(map[int64]domain.Client),
		tasks:   make(map[int64]domain.Task),
		now:     time.Now,
	}
}

func (db *DB) Ping(context.Context) error { return nil }

func (db *DB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

func (db *DB) Users() *Users         { return &Users{db} }
func (db *DB) Clients() *Clients     { return &Clients{db} }
func (db *DB) Tasks() *Tasks         { return &Tasks{db} }
func (db *DB) Dashboard() *Dashboard { return &Dashboard{db} }

type Users struct{ db *DB }

func (r *Users) Create(_ context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.db.nextID("users")
	u.CreatedAt = r.db.now()
	r.db.users[u.ID] = *u
	return nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type Clients struct{ db *DB }

func (r *Clients) ListByUser(_ context.Context, userID int64) ([]domain.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	res := []domain.Client{}
	for _, c := range r.db.clients {
		if c.UserID == userID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *Clients) GetOwned(_ context.Context, userID, id int64) (*domain.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.clients[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Clients) Create(_ context.Context, c *domain.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.nextID("clients")
	c.CreatedAt = r.db.now()
	r.db.clients[c.ID] = *c
	return nil
}

func (r *Clients) Update(_ context.Context, c *domain.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.clients[c.ID]
	if !ok || existing.UserID != c.UserID {
		return repository.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	r.db.clients[c.ID] = *c
	return nil
}

// DeleteOwned detaches the client's tasks, like ON DELETE SET NULL.
func (r *Clients) DeleteOwned(_ context.Context, userID, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.clients[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(r.db.clients, id)
	for tid, t := range r.db.tasks {
		if t.ClientID != nil && *t.ClientID == id {
			t.ClientID = nil
			r.db.tasks[tid] = t
		}
	}
	return true, nil
}

type Tasks struct{ db *DB }

// withClient fills ClientName from the owner's client. Callers hold the lock.
func (r *Tasks) withClient(t domain.Task) domain.Task {
	t.ClientName = nil
	if t.ClientID != nil {
		if c, ok := r.db.clients[*t.ClientID]; ok && c.UserID == t.UserID {
			name := c.Name
			t.ClientName = &name
		}
	}
	return t
}

func (r *Tasks) CreateWithClient(_ context.Context, t *domain.Task, clientName string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t.ClientID, t.ClientName = nil, nil
	if clientName != "" {
		var best *domain.Client
		for _, c := range r.db.clients {
			if c.UserID == t.UserID && c.Name == clientName && (best == nil || c.ID < best.ID) {
				c := c
				best = &c
			}
		}
		if best != nil {
			id := best.ID
			t.ClientID = &id
		}
	}

	t.ID = r.db.nextID("tasks")
	t.CreatedAt = r.db.now()
	t.UpdatedAt = t.CreatedAt
	*t = r.withClient(*t)
	r.db.tasks[t.ID] = *t
	return nil
}

func containsFold(field *string, needle string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), strings.ToLower(needle))
}

func matches(t domain.Task, f domain.TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Client != "" && !containsFold(t.ClientName, f.Client) {
		return false
	}
	if f.Search != "" {
		title := t.Title
		if !containsFold(&title, f.Search) && !containsFold(t.Description, f.Search) && !containsFold(t.ClientName, f.Search) {
			return false
		}
	}
	return true
}

// less orders a before b for field; the second result is false on a tie.
func less(a, b domain.Task, field domain.SortField, desc bool) (bool, bool) {
	flip := func(x bool) bool {
		if desc {
			return !x
		}
		return x
	}
	switch field {
	case domain.SortDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false, false
		case a.DueDate == nil:
			return false, true
		case b.DueDate == nil:
			return true, true
		case a.DueDate.Equal(*b.DueDate):
			return false, false
		}
		return flip(a.DueDate.Before(*b.DueDate)), true
	case domain.SortPriority:
		ra, rb := a.Priority.Rank(), b.Priority.Rank()
		if ra == rb {
			return false, false
		}
		return flip(ra < rb), true
	case domain.SortTitle:
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if ta == tb {
			return false, false
		}
		return flip(ta < tb), true
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return false, false
		}
		return flip(a.CreatedAt.Before(b.CreatedAt)), true
	}
}

func sortTasks(tasks []domain.Task, field domain.SortField, desc bool) {
	sort.Slice(tasks, func(i, j int) bool {
		if l, decided := less(tasks[i], tasks[j], field, desc); decided {
			return l
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func (r *Tasks) owned(userID int64, keep func(domain.Task) bool) []domain.Task {
	res := []domain.Task{}
	for _, t := range r.db.tasks {
		if t.UserID != userID {
			continue
		}
		t = r.withClient(t)
		if keep(t) {
			res = append(res, t)
		}
	}
	return res
}

func (r *Tasks) List(_ context.Context, userID int64, f domain.TaskFilter) ([]domain.Task, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := r.owned(userID, func(t domain.Task) bool { return matches(t, f) })
	sortTasks(all, f.SortBy, f.Desc)

	total := int64(len(all))
	start := f.Offset()
	if start < 0 || start >= len(all) {
		return []domain.Task{}, total, nil
	}
	end := start + f.Limit
	if end < start || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *Tasks) GetOwned(_ context.Context, userID, id int64) (*domain.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t = r.withClient(t)
	return &t, nil
}

func (r *Tasks) ListByClient(_ context.Context, userID, clientID int64) ([]domain.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	res := r.owned(userID, func(t domain.Task) bool { return t.ClientID != nil && *t.ClientID == clientID })
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// Update keeps the stored client id and creation time.
func (r *Tasks) Update(_ context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return repository.ErrNotFound
	}
	t.ClientID = existing.ClientID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.db.now()
	*t = r.withClient(*t)
	r.db.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) DeleteOwned(_ context.Context, userID, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(r.db.tasks, id)
	return true, nil
}

type Dashboard struct{ db *DB }

func (r *Dashboard) TaskStats(_ context.Context, userID int64) (domain.TaskStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var st domain.TaskStats
	for _, t := range r.db.tasks {
		if t.UserID != userID {
			continue
		}
		st.Total++
		switch t.Status {
		case domain.StatusCompleted:
			st.Completed++
		case domain.StatusInProgress:
			st.InProgress++
		case domain.StatusPending:
			st.Pending++
		}
	}
	return st, nil
}

func (r *Dashboard) PriorityStats(_ context.Context, userID int64) (domain.PriorityStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var st domain.PriorityStats
	for _, t := range r.db.tasks {
		if t.UserID != userID {
			continue
		}
		switch t.Priority {
		case domain.PriorityHigh:
			st.High++
		case domain.PriorityMedium:
			st.Medium++
		case domain.PriorityLow:
			st.Low++
		}
	}
	return st, nil
}

func (r *Dashboard) ClientStats(_ context.Context, userID int64) (domain.ClientStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var st domain.ClientStats
	active := make(map[int64]bool)
	for _, t := range r.db.tasks {
		if t.UserID == userID && !t.Completed && t.ClientID != nil {
			active[*t.ClientID] = true
		}
	}
	for _, c := range r.db.clients {
		if c.UserID != userID {
			continue
		}
		st.Total++
		if active[c.ID] {
			st.WithActiveTasks++
		}
	}
	return st, nil
}

func (r *Dashboard) Upcoming(_ context.Context, userID int64) ([]domain.UpcomingTask, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	tasks := (&Tasks{r.db}).owned(userID, func(t domain.Task) bool { return t.DueDate != nil && !t.Completed })
	sortTasks(tasks, domain.SortDueDate, false)

	res := make([]domain.UpcomingTask, 0, len(tasks))
	for _, t := range tasks {
		u := domain.UpcomingTask{
			ID:       t.ID,
			Title:    t.Title,
			DueDate:  t.DueDate.Format(domain.DateLayout),
			Priority: t.Priority,
			Status:   t.Status,
		}
		if t.ClientName != nil {
			u.Client = &domain.ClientRef{Name: *t.ClientName}
		}
		res = append(res, u)
	}
	return res, nil
}
