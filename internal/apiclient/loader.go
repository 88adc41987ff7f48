package apiclient

import (
	"context"
	"sync"

	"workflow_api/internal/domain"
)

type State int

const (
	Idle State = iota
	Loading
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

type Snapshot[T any] struct {
	State State
	Data  T
	Err   error
}

// Loader runs a fetch and publishes its outcome. A load whose context is
// done by the time the fetch returns, or that has been superseded by a
// newer Load, publishes nothing. There is no retry.
type Loader[T any] struct {
	fetch func(context.Context) (T, error)

	mu   sync.Mutex
	seq  uint64
	snap Snapshot[T]
}

func NewLoader[T any](fetch func(context.Context) (T, error)) *Loader[T] {
	return &Loader[T]{fetch: fetch}
}

func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Load blocks until the fetch returns and reports the snapshot afterwards.
// A dropped load restores the snapshot it replaced.
func (l *Loader[T]) Load(ctx context.Context) Snapshot[T] {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	prev := l.snap
	l.snap.State = Loading
	l.snap.Err = nil
	l.mu.Unlock()

	data, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return l.snap
	}
	if ctx.Err() != nil {
		l.snap = prev
		return l.snap
	}
	if err != nil {
		var zero T
		l.snap = Snapshot[T]{State: Failed, Data: zero, Err: err}
	} else {
		l.snap = Snapshot[T]{State: Success, Data: data}
	}
	return l.snap
}

func (c *Client) ClientsLoader() *Loader[[]domain.Client] {
	return NewLoader(c.ListClients)
}

func (c *Client) TasksLoader(q TaskQuery) *Loader[*domain.TaskPage] {
	return NewLoader(func(ctx context.Context) (*domain.TaskPage, error) {
		return c.ListTasks(ctx, q)
	})
}

// ClientTasksLoader fetches the first page of tasks and groups it by client.
func (c *Client) ClientTasksLoader() *Loader[map[int64][]domain.TaskView] {
	return NewLoader(func(ctx context.Context) (map[int64][]domain.TaskView, error) {
		page, err := c.ListTasks(ctx, TaskQuery{})
		if err != nil {
			return nil, err
		}
		return TasksByClient(page.Tasks), nil
	})
}
