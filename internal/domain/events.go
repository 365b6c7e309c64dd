package domain

import "context"

// AssessmentRequest is the explicit assignment request that may ride
// along on a skill-change event.
type AssessmentRequest struct {
	AssignedBy     string   `json:"assigned_by"`
	Title          string   `json:"title"` // may carry comma-separated skills
	Difficulty     string   `json:"difficulty"`
	RelatedJobID   string   `json:"related_job_id,omitempty"`
	AssigneeEmails []string `json:"assignee_emails,omitempty"`
}

// SkillsChangedEvent is the inbound message: a user's skill set changed
// and per-skill content may need to be generated and assigned.
type SkillsChangedEvent struct {
	UserID            string             `json:"user_id"`
	Skills            []string           `json:"skills"`
	AssessmentRequest *AssessmentRequest `json:"assessment_request,omitempty"`
}

// AssignmentEvent is the derived message forwarded to the sibling service
// once assignee emails have been resolved to internal user ids.
type AssignmentEvent struct {
	AssignedBy   string     `json:"assigned_by"`
	Title        string     `json:"title"`
	Difficulty   Difficulty `json:"difficulty"`
	RelatedJobID string     `json:"related_job_id,omitempty"`
	CandidateIDs []string   `json:"candidate_ids"`
}

// EventPublisher forwards derived events to the sibling service.
type EventPublisher interface {
	PublishAssignment(ctx context.Context, event *AssignmentEvent) error
}
