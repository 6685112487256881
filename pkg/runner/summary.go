package runner

import "time"

const (
	statusRunning        = "running"
	statusSuccess        = "success"
	statusPartialSuccess = "partial_success"
	statusFailed         = "failed"
	statusInterrupted    = "interrupted"
	statusAborted        = "aborted"
)

// Outcome is the result of one URL. It lives only as long as the run.
type Outcome struct {
	URL       string `json:"url"`
	Attempts  int    `json:"attempts"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// Summary describes a finished run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	UserAgent string        `json:"user_agent,omitempty"`
	Proxy     string        `json:"proxy,omitempty"`
	LogFile   string        `json:"log_file,omitempty"`
	Outcomes  []Outcome     `json:"outcomes"`
	Metrics   Metrics       `json:"metrics"`
}

// Metrics counts per-URL results.
type Metrics struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Attempts  int `json:"attempts"`
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Metrics.Attempts += o.Attempts
	if o.Succeeded {
		s.Metrics.Succeeded++
	} else {
		s.Metrics.Failed++
	}
}

// settle fills in the end time, counts and, unless already decided, the
// final status.
func (s *Summary) settle(now time.Time) {
	s.EndTime = now
	s.Duration = now.Sub(s.StartTime)
	s.Metrics.Skipped = s.Metrics.Total - s.Metrics.Succeeded - s.Metrics.Failed

	if s.Status != statusRunning {
		return
	}
	switch {
	case s.Metrics.Succeeded == s.Metrics.Total:
		s.Status = statusSuccess
	case s.Metrics.Succeeded > 0:
		s.Status = statusPartialSuccess
	default:
		s.Status = statusFailed
	}
}
