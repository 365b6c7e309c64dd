package domain

import "context"

// ChallengeRepository defines the interface for challenge persistence
type ChallengeRepository interface {
	// CountBySkill returns the size of the unassigned challenge pool
	// for a (skill, difficulty) pair.
	CountBySkill(ctx context.Context, skill string, difficulty Difficulty) (int, error)

	// FindBySkill returns up to limit pool challenges for a skill.
	FindBySkill(ctx context.Context, skill string, difficulty Difficulty, limit int) ([]Challenge, error)

	// SaveAll persists a batch of challenges.
	SaveAll(ctx context.Context, challenges []Challenge) error
}

// AssessmentRepository defines the interface for assessment persistence
type AssessmentRepository interface {
	// GetByID retrieves an assessment with its challenges. Returns
	// (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*Assessment, error)

	// FindByOwnerTitleDifficulty looks up the unique assessment for an
	// (owner, normalized title, difficulty) triple. Returns (nil, nil)
	// when absent.
	FindByOwnerTitleDifficulty(ctx context.Context, owner, title string, difficulty Difficulty) (*Assessment, error)

	// Save persists a new assessment row.
	Save(ctx context.Context, assessment *Assessment) error
}

// RelationRepository defines the interface for user/assessment relations
type RelationRepository interface {
	// FindByUser returns all relations for a user, optionally narrowed
	// by status filters (empty filters mean all statuses).
	FindByUser(ctx context.Context, userID string, statuses []AssessmentStatus) ([]UserAssessmentRelation, error)

	// FindByUsersAndAssessment returns existing relations between any of
	// the given users and the assessment.
	FindByUsersAndAssessment(ctx context.Context, userIDs []string, assessmentID string) ([]UserAssessmentRelation, error)

	// FindPending returns the PENDING relation for a (user, assessment)
	// pair, or (nil, nil) when absent.
	FindPending(ctx context.Context, userID, assessmentID string) (*UserAssessmentRelation, error)

	// SaveAll persists new relation rows.
	SaveAll(ctx context.Context, relations []UserAssessmentRelation) error

	// UpdateStatus moves a relation to its new status.
	UpdateStatus(ctx context.Context, relationID string, status AssessmentStatus) error
}

// UserRepository resolves users for assignment fan-out
type UserRepository interface {
	// GetByID retrieves a user by internal id, (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*User, error)

	// FindByEmails resolves a batch of emails to users. Unknown emails
	// are silently omitted from the result.
	FindByEmails(ctx context.Context, emails []string) ([]User, error)
}

// TransactionManager runs a function inside a database transaction.
// Repository calls made with the callback's context join the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
