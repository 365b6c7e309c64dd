package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"talentforge/internal/domain"
	"talentforge/internal/repository/models"
)

// RelationDatabaseAdapter implements domain.RelationRepository using sqlx.
type RelationDatabaseAdapter struct {
	db *sqlx.DB
}

func NewRelationDatabaseAdapter(db *sqlx.DB) domain.RelationRepository {
	return &RelationDatabaseAdapter{db: db}
}

const relationColumns = `
		id "id",
		user_id "user_id",
		assessment_id "assessment_id",
		assessment_title "assessment_title",
		status "status",
		relation_type "relation_type",
		created_at "created_at",
		updated_at "updated_at"`

// FindByUser lists a user's relations, newest first, optionally narrowed
// to the given statuses.
func (a *RelationDatabaseAdapter) FindByUser(ctx context.Context, userID string, statuses []domain.AssessmentStatus) ([]domain.UserAssessmentRelation, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + relationColumns + `
	FROM user_assessment_relations
	WHERE user_id = :1`
	args := []interface{}{userID}

	if len(statuses) > 0 {
		query += ` AND status IN (` + inPlaceholders(2, len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC`

	var rows []models.UserAssessmentRelation
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list relations for user %s: %w", userID, err)
	}
	return toDomainRelations(rows), nil
}

// FindByUsersAndAssessment returns relations any of the users already
// hold on the assessment.
func (a *RelationDatabaseAdapter) FindByUsersAndAssessment(ctx context.Context, userIDs []string, assessmentID string) ([]domain.UserAssessmentRelation, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + relationColumns + `
	FROM user_assessment_relations
	WHERE assessment_id = :1
	AND user_id IN (` + inPlaceholders(2, len(userIDs)) + `)`

	args := make([]interface{}, 0, len(userIDs)+1)
	args = append(args, assessmentID)
	for _, id := range userIDs {
		args = append(args, id)
	}
	var rows []models.UserAssessmentRelation
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find relations for assessment %s: %w", assessmentID, err)
	}
	return toDomainRelations(rows), nil
}

// FindPending resolves the PENDING relation for a (user, assessment) pair.
func (a *RelationDatabaseAdapter) FindPending(ctx context.Context, userID, assessmentID string) (*domain.UserAssessmentRelation, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + relationColumns + `
	FROM user_assessment_relations
	WHERE user_id = :1 AND assessment_id = :2 AND status = :3`

	var row models.UserAssessmentRelation
	err := executor.GetContext(ctx, &row, query, userID, assessmentID, string(domain.StatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending relation for user %s: %w", userID, err)
	}
	relation := row.ToDomain()
	return &relation, nil
}

// SaveAll inserts a batch of relation rows.
func (a *RelationDatabaseAdapter) SaveAll(ctx context.Context, relations []domain.UserAssessmentRelation) error {
	if len(relations) == 0 {
		return nil
	}
	executor := GetExecutor(ctx, a.db)
	query := `INSERT INTO user_assessment_relations (
		id, user_id, assessment_id, assessment_title, status, relation_type, created_at, updated_at
	) VALUES (
		:id, :user_id, :assessment_id, :assessment_title, :status, :relation_type, :created_at, :updated_at
	)`

	for i := range relations {
		row := models.FromDomainRelation(&relations[i])
		if _, err := executor.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to save relation %s: %w", row.ID, err)
		}
	}
	return nil
}

// UpdateStatus moves a relation to its new status.
func (a *RelationDatabaseAdapter) UpdateStatus(ctx context.Context, relationID string, status domain.AssessmentStatus) error {
	executor := GetExecutor(ctx, a.db)
	query := `UPDATE user_assessment_relations
	SET status = :1, updated_at = :2
	WHERE id = :3`

	if _, err := executor.ExecContext(ctx, query, string(status), time.Now(), relationID); err != nil {
		return fmt.Errorf("failed to update relation %s: %w", relationID, err)
	}
	return nil
}

func toDomainRelations(rows []models.UserAssessmentRelation) []domain.UserAssessmentRelation {
	relations := make([]domain.UserAssessmentRelation, len(rows))
	for i := range rows {
		relations[i] = rows[i].ToDomain()
	}
	return relations
}
