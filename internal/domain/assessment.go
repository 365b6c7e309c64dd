package domain

import (
	"time"
)

// AssessmentStatus tracks a user's progress on an assigned assessment.
type AssessmentStatus string

const (
	StatusDefault   AssessmentStatus = "DEFAULT"
	StatusPending   AssessmentStatus = "PENDING"
	StatusCompleted AssessmentStatus = "COMPLETED"
	StatusFailed    AssessmentStatus = "FAILED"
)

// AllStatuses is the default relation status filter set.
var AllStatuses = []AssessmentStatus{StatusDefault, StatusPending, StatusCompleted, StatusFailed}

// RelationType distinguishes the assessment owner from its candidates.
type RelationType string

const (
	RelationCreated  RelationType = "CREATED"
	RelationAssigned RelationType = "ASSIGNED"
)

// SystemOwner is the creator id used for assessments generated from
// skill-change events rather than an explicit owner request.
const SystemOwner = "SYSTEM"

// Assessment is a named, skill-and-difficulty-scoped bundle of challenges.
type Assessment struct {
	ID           string
	Title        string // normalized skill
	Difficulty   Difficulty
	CreatedBy    string
	RelatedJobID string
	Questions    int
	Challenges   []Challenge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserAssessmentRelation links a user to an assessment. The
// (UserID, AssessmentID) pair is unique.
type UserAssessmentRelation struct {
	ID              string
	UserID          string
	AssessmentID    string
	AssessmentTitle string
	Status          AssessmentStatus
	Type            RelationType
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRelationForCandidate creates the PENDING assignment relation.
func NewRelationForCandidate(userID string, assessment *Assessment) *UserAssessmentRelation {
	return &UserAssessmentRelation{
		UserID:          userID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		Status:          StatusPending,
		Type:            RelationAssigned,
	}
}

// NewRelationForOwner creates the owner's CREATED relation. Its status is
// DEFAULT and never progresses.
func NewRelationForOwner(userID string, assessment *Assessment) *UserAssessmentRelation {
	return &UserAssessmentRelation{
		UserID:          userID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		Status:          StatusDefault,
		Type:            RelationCreated,
	}
}

// Resolve moves a PENDING relation to its terminal state. Transitions out
// of any other state are rejected; terminal states never revert.
func (r *UserAssessmentRelation) Resolve(passed bool) error {
	if r.Status != StatusPending {
		return NewInvalidInputError("relation is not pending submission")
	}
	if passed {
		r.Status = StatusCompleted
	} else {
		r.Status = StatusFailed
	}
	return nil
}

// User is the slice of the profile this pipeline needs: the id candidates
// are assigned by, and the email assignment requests arrive with.
type User struct {
	ID        string
	Email     string
	Name      string
	Skills    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
