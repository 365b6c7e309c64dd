package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"talentforge/internal/domain"
	"talentforge/internal/repository/models"
)

// ChallengeDatabaseAdapter implements domain.ChallengeRepository using sqlx.
type ChallengeDatabaseAdapter struct {
	db *sqlx.DB
}

func NewChallengeDatabaseAdapter(db *sqlx.DB) domain.ChallengeRepository {
	return &ChallengeDatabaseAdapter{db: db}
}

const challengeColumns = `
		id "id",
		question "question",
		options "options",
		answer "answer",
		skill "skill",
		difficulty "difficulty",
		assessment_id "assessment_id",
		created_at "created_at",
		updated_at "updated_at"`

// CountBySkill counts the unassigned pool for a (skill, difficulty) pair.
func (a *ChallengeDatabaseAdapter) CountBySkill(ctx context.Context, skill string, difficulty domain.Difficulty) (int, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT COUNT(*) FROM challenges
	WHERE skill = :1 AND difficulty = :2 AND assessment_id IS NULL`

	var count int
	if err := executor.GetContext(ctx, &count, query, skill, string(difficulty)); err != nil {
		return 0, fmt.Errorf("failed to count challenges for skill %s: %w", skill, err)
	}
	return count, nil
}

// FindBySkill loads up to limit pool challenges, oldest first so every
// assessment of a (skill, difficulty) pair copies the same stable subset.
func (a *ChallengeDatabaseAdapter) FindBySkill(ctx context.Context, skill string, difficulty domain.Difficulty, limit int) ([]domain.Challenge, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + challengeColumns + `
	FROM challenges
	WHERE skill = :1 AND difficulty = :2 AND assessment_id IS NULL
	ORDER BY created_at
	FETCH FIRST :3 ROWS ONLY`

	var rows []models.Challenge
	if err := executor.SelectContext(ctx, &rows, query, skill, string(difficulty), limit); err != nil {
		return nil, fmt.Errorf("failed to find challenges for skill %s: %w", skill, err)
	}
	return toDomainChallenges(rows), nil
}

// SaveAll inserts a batch of challenges.
func (a *ChallengeDatabaseAdapter) SaveAll(ctx context.Context, challenges []domain.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	executor := GetExecutor(ctx, a.db)
	query := `INSERT INTO challenges (
		id, question, options, answer, skill, difficulty, assessment_id, created_at, updated_at
	) VALUES (
		:id, :question, :options, :answer, :skill, :difficulty, :assessment_id, :created_at, :updated_at
	)`

	for i := range challenges {
		row := models.FromDomainChallenge(&challenges[i])
		if _, err := executor.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to save challenge %s: %w", row.ID, err)
		}
	}
	return nil
}

func toDomainChallenges(rows []models.Challenge) []domain.Challenge {
	challenges := make([]domain.Challenge, len(rows))
	for i := range rows {
		challenges[i] = rows[i].ToDomain()
	}
	return challenges
}
