package task

import "time"

const dateLayout = "2006-01-02"

// Task dates (created_at, dead_line) are plain YYYY-MM-DD strings,
// validated at the boundary and stored as-is.
type Task struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	DeadLine    string `json:"dead_line"`
	Status      string `json:"status"`
	IsAlive     bool   `json:"is_alive"`
	CreatedBy   string `json:"created_by"`
}

func validDate(raw string) bool {
	_, err := time.Parse(dateLayout, raw)
	return err == nil
}
