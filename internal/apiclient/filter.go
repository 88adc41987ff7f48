package apiclient

import (
	"sort"
	"strings"

	"workflow_api/internal/domain"
)

// TasksByClient groups tasks by client id. Tasks without a client are
// dropped.
func TasksByClient(tasks []domain.TaskView) map[int64][]domain.TaskView {
	out := make(map[int64][]domain.TaskView)
	for _, t := range tasks {
		if t.ClientID == nil {
			continue
		}
		out[*t.ClientID] = append(out[*t.ClientID], t)
	}
	return out
}

// LocalFilter is the in-page filter over an already fetched task list.
// Empty Status or Priority means all.
type LocalFilter struct {
	Search   string
	Status   domain.Status
	Priority domain.Priority
	SortBy   string // "deadline", "priority" or "title"
	Desc     bool
}

func containsFold(s *string, needle string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), needle)
}

// FilterTasks returns a filtered, sorted copy. For deadline sorting a
// missing deadline counts as the earliest date. Unknown SortBy keeps the
// input order.
func FilterTasks(tasks []domain.TaskView, f LocalFilter) []domain.TaskView {
	needle := strings.ToLower(f.Search)
	out := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!containsFold(t.Description, needle) &&
			!containsFold(t.Client, needle) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}

	var cmp func(a, b domain.TaskView) int
	switch f.SortBy {
	case "deadline":
		cmp = func(a, b domain.TaskView) int { return strings.Compare(deref(a.Deadline), deref(b.Deadline)) }
	case "priority":
		cmp = func(a, b domain.TaskView) int { return a.Priority.Rank() - b.Priority.Rank() }
	case "title":
		cmp = func(a, b domain.TaskView) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return cmp(out[j], out[i]) < 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
