package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"talentforge/internal/domain"
	"talentforge/internal/repository/models"
)

// UserDatabaseAdapter implements domain.UserRepository using sqlx.
type UserDatabaseAdapter struct {
	db *sqlx.DB
}

func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserRepository {
	return &UserDatabaseAdapter{db: db}
}

const userColumns = `
		id "id",
		email "email",
		name "name",
		skills "skills",
		created_at "created_at",
		updated_at "updated_at"`

// GetByID retrieves a user by internal id.
func (a *UserDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.User, error) {
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE id = :1`

	var row models.User
	if err := executor.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	user := row.ToDomain()
	return &user, nil
}

// FindByEmails resolves a batch of emails to users. Lookups are
// case-insensitive; unknown emails are omitted.
func (a *UserDatabaseAdapter) FindByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	executor := GetExecutor(ctx, a.db)
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE LOWER(email) IN (` + inPlaceholders(1, len(emails)) + `)`

	args := make([]interface{}, len(emails))
	for i, email := range emails {
		args[i] = strings.ToLower(strings.TrimSpace(email))
	}
	var rows []models.User
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find users by emails: %w", err)
	}
	users := make([]domain.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}
