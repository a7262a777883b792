package audit

import "time"

// Record is one appended request-log row, written by the gateway after
// each proxied response.
type Record struct {
	Route    string
	Service  string
	Method   string
	Status   int
	Duration time.Duration
	LoggedAt time.Time
	User     string
}

// Entry is the wire shape returned by GET /logs; field names match the
// documents the log consumers already read.
type Entry struct {
	ID           string  `json:"_id"`
	Route        string  `json:"route"`
	Service      string  `json:"service"`
	Method       string  `json:"method"`
	Status       int     `json:"status"`
	ResponseTime float64 `json:"response_time"`
	Timestamp    string  `json:"timestamp"`
	User         string  `json:"user"`
}

type Filter struct {
	User   string
	Route  string
	Status *int
	Start  *time.Time
	End    *time.Time
}
