package domain

type TaskStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
	Pending    int64 `json:"pending"`
}

type PriorityStats struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

type ClientStats struct {
	Total           int64 `json:"total"`
	WithActiveTasks int64 `json:"withActiveTasks"`
}

type DashboardStats struct {
	TaskStats     TaskStats     `json:"taskStats"`
	PriorityStats PriorityStats `json:"priorityStats"`
	ClientStats   ClientStats   `json:"clientStats"`
}

type ClientRef struct {
	Name string `json:"name"`
}

// UpcomingTask is an incomplete task with a due date.
type UpcomingTask struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	DueDate  string     `json:"due_date"`
	Priority Priority   `json:"priority"`
	Status   Status     `json:"status"`
	Client   *ClientRef `json:"client"`
}
