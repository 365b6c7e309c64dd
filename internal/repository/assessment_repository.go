package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"talentforge/internal/domain"
	"talentforge/internal/repository/models"
)

// AssessmentDatabaseAdapter implements domain.AssessmentRepository using sqlx.
type AssessmentDatabaseAdapter struct {
	db *sqlx.DB
}

func NewAssessmentDatabaseAdapter(db *sqlx.DB) domain.AssessmentRepository {
	return &AssessmentDatabaseAdapter{db: db}
}

const assessmentColumns = `
		id "id",
		title "title",
		difficulty "difficulty",
		created_by "created_by",
		related_job_id "related_job_id",
		questions "questions",
		created_at "created_at",
		updated_at "updated_at"`

// GetByID loads an assessment together with its challenges.
func (a *AssessmentDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + assessmentColumns + `
	FROM assessments
	WHERE id = :1`

	var row models.Assessment
	if err := executor.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment %s: %w", id, err)
	}

	challengeQuery := `SELECT ` + challengeColumns + `
	FROM challenges
	WHERE assessment_id = :1
	ORDER BY created_at`

	var challengeRows []models.Challenge
	if err := executor.SelectContext(ctx, &challengeRows, challengeQuery, id); err != nil {
		return nil, fmt.Errorf("failed to load challenges for assessment %s: %w", id, err)
	}

	assessment := row.ToDomain()
	assessment.Challenges = toDomainChallenges(challengeRows)
	return assessment, nil
}

// FindByOwnerTitleDifficulty resolves the unique assessment for an
// (owner, title, difficulty) triple.
func (a *AssessmentDatabaseAdapter) FindByOwnerTitleDifficulty(ctx context.Context, owner, title string, difficulty domain.Difficulty) (*domain.Assessment, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + assessmentColumns + `
	FROM assessments
	WHERE created_by = :1 AND title = :2 AND difficulty = :3`

	var row models.Assessment
	if err := executor.GetContext(ctx, &row, query, owner, title, string(difficulty)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find assessment for owner %s: %w", owner, err)
	}
	return row.ToDomain(), nil
}

// Save inserts a new assessment row. Its challenges are persisted
// separately through the challenge repository.
func (a *AssessmentDatabaseAdapter) Save(ctx context.Context, assessment *domain.Assessment) error {
	executor := GetExecutor(ctx, a.db)
	query := `INSERT INTO assessments (
		id, title, difficulty, created_by, related_job_id, questions, created_at, updated_at
	) VALUES (
		:id, :title, :difficulty, :created_by, :related_job_id, :questions, :created_at, :updated_at
	)`

	if _, err := executor.NamedExecContext(ctx, query, models.FromDomainAssessment(assessment)); err != nil {
		return fmt.Errorf("failed to save assessment %s: %w", assessment.ID, err)
	}
	return nil
}
