package dto

import (
	"time"

	"talentforge/internal/domain"
	"talentforge/internal/service"
)

// CreateAssessmentRequest creates one assessment per skill in Title.
// Title may carry several comma-separated skills.
type CreateAssessmentRequest struct {
	CreatedBy    string `json:"created_by"`
	Title        string `json:"title"`
	Difficulty   string `json:"difficulty"`
	RelatedJobID string `json:"related_job_id,omitempty"`
}

// AssessmentSummary is the list/creation view of an assessment.
type AssessmentSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Difficulty   string    `json:"difficulty"`
	CreatedBy    string    `json:"created_by"`
	RelatedJobID string    `json:"related_job_id,omitempty"`
	Questions    int       `json:"questions"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateAssessmentResponse lists the assessments backing the request.
type CreateAssessmentResponse struct {
	Assessments []AssessmentSummary `json:"assessments"`
}

// ChallengeView is a challenge as shown to a candidate. The correct
// answer never leaves the server.
type ChallengeView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// AssessmentResponse is the full assessment view. RelationStatus is
// populated only when the request names the viewing user.
type AssessmentResponse struct {
	AssessmentSummary
	Challenges     []ChallengeView `json:"challenges"`
	RelationStatus string          `json:"relation_status,omitempty"`
}

// SubmitRequest carries a candidate's answers, keyed by challenge id.
type SubmitRequest struct {
	UserID  string            `json:"user_id"`
	Answers map[string]string `json:"answers"`
}

// SubmitResponse reports the graded submission.
type SubmitResponse struct {
	Correct        int     `json:"correct"`
	Total          int     `json:"total"`
	PassPercentage float64 `json:"pass_percentage"`
	Status         string  `json:"status"`
}

// RelationResponse is one entry of a user's assessment list.
type RelationResponse struct {
	AssessmentID    string    `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	Status          string    `json:"status"`
	Type            string    `json:"type"`
	AssignedAt      time.Time `json:"assigned_at"`
}

// UserAssessmentsResponse lists a user's relations.
type UserAssessmentsResponse struct {
	UserID      string             `json:"user_id"`
	Assessments []RelationResponse `json:"assessments"`
}

func ToAssessmentSummary(a *domain.Assessment) AssessmentSummary {
	return AssessmentSummary{
		ID:           a.ID,
		Title:        a.Title,
		Difficulty:   string(a.Difficulty),
		CreatedBy:    a.CreatedBy,
		RelatedJobID: a.RelatedJobID,
		Questions:    a.Questions,
		CreatedAt:    a.CreatedAt,
	}
}

func ToAssessmentResponse(a *domain.Assessment) AssessmentResponse {
	response := AssessmentResponse{AssessmentSummary: ToAssessmentSummary(a)}
	for _, c := range a.Challenges {
		response.Challenges = append(response.Challenges, ChallengeView{
			ID:       c.ID,
			Question: c.Question,
			Options:  c.Options,
		})
	}
	return response
}

func ToSubmitResponse(result *service.SubmissionResult) SubmitResponse {
	return SubmitResponse{
		Correct:        result.Correct,
		Total:          result.Total,
		PassPercentage: result.PassPercentage,
		Status:         string(result.Status),
	}
}

func ToUserAssessmentsResponse(userID string, relations []domain.UserAssessmentRelation) UserAssessmentsResponse {
	response := UserAssessmentsResponse{UserID: userID, Assessments: []RelationResponse{}}
	for _, r := range relations {
		response.Assessments = append(response.Assessments, RelationResponse{
			AssessmentID:    r.AssessmentID,
			AssessmentTitle: r.AssessmentTitle,
			Status:          string(r.Status),
			Type:            string(r.Type),
			AssignedAt:      r.CreatedAt,
		})
	}
	return response
}
