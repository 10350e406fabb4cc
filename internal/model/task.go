package model

import "time"

const (
	SubjectMaths     = "Maths"
	SubjectPhysics   = "Physics"
	SubjectChemistry = "Chemistry"
	SubjectOther     = "Other"

	StatusPending          = "pending"
	StatusInProgress       = "in_progress"
	StatusPaused           = "paused"
	StatusCompletedOnTime  = "completed_on_time"
	StatusCompletedDelayed = "completed_delayed"
)

// DateLayout is the calendar-day format used for task dates, summary dates
// and a user's last active date.
const DateLayout = "2006-01-02"

type Task struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Subject          string     `json:"subject"`
	Name             string     `json:"name"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	ElapsedSeconds   int64      `json:"elapsedSeconds"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	LastResumedAt    *time.Time `json:"lastResumedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	ActualMinutes    int        `json:"actualMinutes"`
	TaskDate         string     `json:"taskDate"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (t Task) Completed() bool {
	return IsCompletedStatus(t.Status)
}

func IsCompletedStatus(status string) bool {
	return status == StatusCompletedOnTime || status == StatusCompletedDelayed
}

func IsValidSubject(subject string) bool {
	switch subject {
	case SubjectMaths, SubjectPhysics, SubjectChemistry, SubjectOther:
		return true
	}
	return false
}
