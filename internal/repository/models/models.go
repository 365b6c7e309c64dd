package models

import (
	"database/sql"
	"strings"
	"time"

	"talentforge/internal/domain"
)

// optionDelimiter separates answer options inside their CLOB column.
const optionDelimiter = "|||"

// Challenge is the challenges table row. A NULL assessment_id marks a
// pool entry not yet bound to an assessment.
type Challenge struct {
	ID           string         `db:"id"`
	Question     string         `db:"question"`
	Options      string         `db:"options"`
	Answer       string         `db:"answer"`
	Skill        string         `db:"skill"`
	Difficulty   string         `db:"difficulty"`
	AssessmentID sql.NullString `db:"assessment_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Assessment is the assessments table row.
type Assessment struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Difficulty   string         `db:"difficulty"`
	CreatedBy    string         `db:"created_by"`
	RelatedJobID sql.NullString `db:"related_job_id"`
	Questions    int            `db:"questions"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// UserAssessmentRelation is the user_assessment_relations table row.
type UserAssessmentRelation struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	AssessmentID    string    `db:"assessment_id"`
	AssessmentTitle string    `db:"assessment_title"`
	Status          string    `db:"status"`
	RelationType    string    `db:"relation_type"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// User is the users table row.
type User struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	Name      sql.NullString `db:"name"`
	Skills    sql.NullString `db:"skills"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// JoinOptions flattens answer options for storage.
func JoinOptions(options []string) string {
	return strings.Join(options, optionDelimiter)
}

// SplitOptions restores answer options from their stored form.
func SplitOptions(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, optionDelimiter)
}

func FromDomainChallenge(c *domain.Challenge) *Challenge {
	m := &Challenge{
		ID:         c.ID,
		Question:   c.Question,
		Options:    JoinOptions(c.Options),
		Answer:     c.Answer,
		Skill:      c.Skill,
		Difficulty: string(c.Difficulty),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.AssessmentID != "" {
		m.AssessmentID = sql.NullString{String: c.AssessmentID, Valid: true}
	}
	return m
}

func (m *Challenge) ToDomain() domain.Challenge {
	return domain.Challenge{
		ID:           m.ID,
		Question:     m.Question,
		Options:      SplitOptions(m.Options),
		Answer:       m.Answer,
		Skill:        m.Skill,
		Difficulty:   domain.Difficulty(m.Difficulty),
		AssessmentID: m.AssessmentID.String,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromDomainAssessment(a *domain.Assessment) *Assessment {
	m := &Assessment{
		ID:         a.ID,
		Title:      a.Title,
		Difficulty: string(a.Difficulty),
		CreatedBy:  a.CreatedBy,
		Questions:  a.Questions,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.RelatedJobID != "" {
		m.RelatedJobID = sql.NullString{String: a.RelatedJobID, Valid: true}
	}
	return m
}

func (m *Assessment) ToDomain() *domain.Assessment {
	return &domain.Assessment{
		ID:           m.ID,
		Title:        m.Title,
		Difficulty:   domain.Difficulty(m.Difficulty),
		CreatedBy:    m.CreatedBy,
		RelatedJobID: m.RelatedJobID.String,
		Questions:    m.Questions,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromDomainRelation(r *domain.UserAssessmentRelation) *UserAssessmentRelation {
	return &UserAssessmentRelation{
		ID:              r.ID,
		UserID:          r.UserID,
		AssessmentID:    r.AssessmentID,
		AssessmentTitle: r.AssessmentTitle,
		Status:          string(r.Status),
		RelationType:    string(r.Type),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (m *UserAssessmentRelation) ToDomain() domain.UserAssessmentRelation {
	return domain.UserAssessmentRelation{
		ID:              m.ID,
		UserID:          m.UserID,
		AssessmentID:    m.AssessmentID,
		AssessmentTitle: m.AssessmentTitle,
		Status:          domain.AssessmentStatus(m.Status),
		Type:            domain.RelationType(m.RelationType),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (m *User) ToDomain() domain.User {
	u := domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name.String,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Skills.Valid && m.Skills.String != "" {
		u.Skills = strings.Split(m.Skills.String, ",")
		for i := range u.Skills {
			u.Skills[i] = strings.TrimSpace(u.Skills[i])
		}
	}
	return u
}
