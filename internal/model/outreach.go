package model

import "time"

// RunStatus represents the current state of a search run.
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
)

// AutomationState is the singleton operator toggle for the outreach
// automation. Read once per invocation, never cached across invocations.
type AutomationState struct {
	IsRunning bool       `json:"is_running"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// SearchRun is one execution of the pipeline for one query. Created with
// status=processing and finalized exactly once with status=completed; the
// status never reverts.
type SearchRun struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	Sender       string    `json:"sender"`
	Status       RunStatus `json:"status"`
	TotalResults int       `json:"total_results"`
	EmailsFound  int       `json:"emails_found"`
	EmailsSent   int       `json:"emails_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunTotals holds the aggregate counters written when a run completes.
type RunTotals struct {
	TotalResults int `json:"total_results"`
	EmailsFound  int `json:"emails_found"`
	EmailsSent   int `json:"emails_sent"`
}

// Candidate is a raw discovery result before contact resolution.
type Candidate struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Snippet string `json:"snippet,omitempty"`
}

// Prospect is a discovered business/contact tracked through the pipeline.
// A row is only created once a candidate has a resolved email and has passed
// both the suppression and history filters. EmailSent=true implies SentAt and
// ProviderMessageID are both set; a created-but-unsent prospect is a valid
// transient state within a run.
type Prospect struct {
	ID                string     `json:"id"`
	SearchRunID       string     `json:"search_run_id"`
	Name              string     `json:"name"`
	CleanName         string     `json:"clean_name"`
	Website           string     `json:"website"`
	Email             string     `json:"email"`
	BusinessType      string     `json:"business_type"`
	EmailSent         bool       `json:"email_sent"`
	EmailSentAt       *time.Time `json:"email_sent_at,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	RenderedMessage   string     `json:"rendered_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RunSummary is the invocation response returned to the scheduler or
// operator. The caller only ever sees this JSON shape, success or failure.
type RunSummary struct {
	Success     bool   `json:"success"`
	Skipped     bool   `json:"skipped,omitempty"`
	Query       string `json:"query,omitempty"`
	Sender      string `json:"sender,omitempty"`
	Found       int    `json:"found,omitempty"`
	EmailsFound int    `json:"emailsFound,omitempty"`
	EmailsSent  int    `json:"emailsSent,omitempty"`
	Error       string `json:"error,omitempty"`
}
