package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentforge/internal/cache"
	"talentforge/internal/config"
	"talentforge/internal/domain"
	"talentforge/internal/logger"
	"talentforge/internal/util"
)

const assessmentCacheTTL = 10 * time.Minute

// SubmissionResult is the outcome of grading one submission.
type SubmissionResult struct {
	Correct        int                     `json:"correct"`
	Total          int                     `json:"total"`
	PassPercentage float64                 `json:"pass_percentage"`
	Status         domain.AssessmentStatus `json:"status"`
}

// AssessmentService owns the assessment lifecycle: creation against the
// challenge pool, candidate assignment, grading, and lookups.
type AssessmentService interface {
	// CreateOrReuseAssessment returns the unique assessment for the
	// (owner, skill, difficulty) triple, materializing it from the
	// challenge pool when absent.
	CreateOrReuseAssessment(ctx context.Context, owner, skill string, difficulty domain.Difficulty, relatedJobID string) (*domain.Assessment, error)

	// Assign links the given users to an assessment as PENDING
	// candidates and returns only the newly created relations. Users
	// already linked are skipped.
	Assign(ctx context.Context, assessment *domain.Assessment, userIDs []string) ([]domain.UserAssessmentRelation, error)

	// Submit grades a candidate's answers, keyed by challenge id, and
	// resolves the PENDING relation to COMPLETED or FAILED.
	Submit(ctx context.Context, userID, assessmentID string, answers map[string]string) (*SubmissionResult, error)

	// GetAssessment loads an assessment with its challenges.
	GetAssessment(ctx context.Context, id string) (*domain.Assessment, error)

	// ListUserAssessments returns a user's relations, optionally
	// filtered by status.
	ListUserAssessments(ctx context.Context, userID string, statuses []domain.AssessmentStatus) ([]domain.UserAssessmentRelation, error)

	// HandleAssignmentEvent materializes assessments for every skill in
	// the event title and assigns the resolved candidates.
	HandleAssignmentEvent(ctx context.Context, event *domain.AssignmentEvent) error
}

type assessmentService struct {
	assessmentRepo domain.AssessmentRepository
	challengeRepo  domain.ChallengeRepository
	relationRepo   domain.RelationRepository
	generation     GenerationService
	txManager      domain.TransactionManager
	cache          domain.Cache
	cfg            config.AssessmentConfig
	genCfg         config.GenerationConfig
}

func NewAssessmentService(
	assessmentRepo domain.AssessmentRepository,
	challengeRepo domain.ChallengeRepository,
	relationRepo domain.RelationRepository,
	generation GenerationService,
	txManager domain.TransactionManager,
	cacheClient domain.Cache,
	cfg config.AssessmentConfig,
	genCfg config.GenerationConfig,
) AssessmentService {
	return &assessmentService{
		assessmentRepo: assessmentRepo,
		challengeRepo:  challengeRepo,
		relationRepo:   relationRepo,
		generation:     generation,
		txManager:      txManager,
		cache:          cacheClient,
		cfg:            cfg,
		genCfg:         genCfg,
	}
}

// SplitSkills breaks a comma-separated title into normalized skills,
// dropping blanks.
func SplitSkills(title string) []string {
	var skills []string
	for _, part := range strings.Split(title, ",") {
		if skill := domain.NormalizeSkill(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func (s *assessmentService) CreateOrReuseAssessment(ctx context.Context, owner, skill string, difficulty domain.Difficulty, relatedJobID string) (*domain.Assessment, error) {
	skill = domain.NormalizeSkill(skill)
	if skill == "" {
		return nil, domain.NewInvalidInputError("skill must not be empty")
	}
	if owner == "" {
		owner = domain.SystemOwner
	}

	existing, err := s.assessmentRepo.FindByOwnerTitleDifficulty(ctx, owner, skill, difficulty)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up assessment", err)
	}
	if existing != nil {
		return existing, nil
	}

	// A quota shortfall still leaves whatever the pool already holds, so
	// it only warns; creation proceeds on the partial pool.
	if _, err := s.generation.EnsureSkillQuota(ctx, skill, difficulty); err != nil {
		if de, ok := err.(*domain.DomainError); ok && de.Code == domain.ErrQuotaUnmet {
			logger.Get().Warn("pool quota unmet, creating from partial pool",
				zap.String("skill", skill), zap.Error(err))
		} else {
			return nil, err
		}
	}

	pool, err := s.challengeRepo.FindBySkill(ctx, skill, difficulty, s.genCfg.MaxQuestionsCap)
	if err != nil {
		return nil, domain.NewInternalError("failed to load challenge pool", err)
	}
	if len(pool) == 0 {
		return nil, domain.NewEmptyAssessmentError(skill)
	}

	now := time.Now()
	assessment := &domain.Assessment{
		ID:           util.NewULID(),
		Title:        skill,
		Difficulty:   difficulty,
		CreatedBy:    owner,
		RelatedJobID: relatedJobID,
		Questions:    len(pool),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Pool entries are copied under fresh ids so the pool itself stays
	// intact for the next assessment over the same skill.
	challenges := make([]domain.Challenge, len(pool))
	for i, c := range pool {
		c.ID = util.NewULID()
		c.AssessmentID = assessment.ID
		c.CreatedAt = now
		c.UpdatedAt = now
		challenges[i] = c
	}
	assessment.Challenges = challenges

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assessmentRepo.Save(txCtx, assessment); err != nil {
			return err
		}
		if err := s.challengeRepo.SaveAll(txCtx, challenges); err != nil {
			return err
		}
		if owner != domain.SystemOwner {
			relation := domain.NewRelationForOwner(owner, assessment)
			relation.ID = util.NewULID()
			relation.CreatedAt = now
			relation.UpdatedAt = now
			return s.relationRepo.SaveAll(txCtx, []domain.UserAssessmentRelation{*relation})
		}
		return nil
	})
	if err != nil {
		// A concurrent creator may have won the unique index race; the
		// surviving row is the answer either way.
		if winner, findErr := s.assessmentRepo.FindByOwnerTitleDifficulty(ctx, owner, skill, difficulty); findErr == nil && winner != nil {
			return winner, nil
		}
		return nil, domain.NewInternalError("failed to create assessment", err)
	}
	return assessment, nil
}

func (s *assessmentService) Assign(ctx context.Context, assessment *domain.Assessment, userIDs []string) ([]domain.UserAssessmentRelation, error) {
	if assessment == nil || len(userIDs) == 0 {
		return nil, nil
	}

	existing, err := s.relationRepo.FindByUsersAndAssessment(ctx, userIDs, assessment.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up existing relations", err)
	}
	linked := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		linked[r.UserID] = struct{}{}
	}

	now := time.Now()
	var created []domain.UserAssessmentRelation
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		if _, ok := linked[userID]; ok {
			continue
		}
		linked[userID] = struct{}{}
		relation := domain.NewRelationForCandidate(userID, assessment)
		relation.ID = util.NewULID()
		relation.CreatedAt = now
		relation.UpdatedAt = now
		created = append(created, *relation)
	}
	if len(created) == 0 {
		return nil, nil
	}

	if err := s.relationRepo.SaveAll(ctx, created); err != nil {
		return nil, domain.NewInternalError("failed to persist relations", err)
	}
	logger.Get().Info("assigned assessment",
		zap.String("assessment_id", assessment.ID),
		zap.String("title", assessment.Title),
		zap.Int("new_candidates", len(created)))
	return created, nil
}

func (s *assessmentService) Submit(ctx context.Context, userID, assessmentID string, answers map[string]string) (*SubmissionResult, error) {
	relation, err := s.relationRepo.FindPending(ctx, userID, assessmentID)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up pending relation", err)
	}
	if relation == nil {
		return nil, domain.NewSubmissionNotFoundError(userID, assessmentID)
	}

	assessment, err := s.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	total := len(assessment.Challenges)
	if total == 0 {
		return nil, domain.NewEmptyAssessmentError(assessment.Title)
	}

	correct := 0
	for _, challenge := range assessment.Challenges {
		if submitted, ok := answers[challenge.ID]; ok && answersMatch(submitted, challenge.Answer) {
			correct++
		}
	}
	passPercentage := float64(correct*100) / float64(total)
	passed := passPercentage > s.cfg.PassThreshold

	if err := relation.Resolve(passed); err != nil {
		return nil, err
	}
	if err := s.relationRepo.UpdateStatus(ctx, relation.ID, relation.Status); err != nil {
		return nil, domain.NewInternalError("failed to update relation status", err)
	}

	logger.Get().Info("graded submission",
		zap.String("user_id", userID),
		zap.String("assessment_id", assessmentID),
		zap.Int("correct", correct),
		zap.Int("total", total),
		zap.Float64("pass_percentage", passPercentage),
		zap.String("status", string(relation.Status)))

	return &SubmissionResult{
		Correct:        correct,
		Total:          total,
		PassPercentage: passPercentage,
		Status:         relation.Status,
	}, nil
}

// answersMatch compares a submitted answer to the stored one. Matching is
// exact: grading never normalizes case or whitespace, so clients must echo
// the answer string verbatim.
func answersMatch(submitted, expected string) bool {
	return submitted == expected
}

func (s *assessmentService) GetAssessment(ctx context.Context, id string) (*domain.Assessment, error) {
	key := cache.AssessmentKey(id)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var assessment domain.Assessment
		if err := json.Unmarshal([]byte(cached), &assessment); err == nil {
			return &assessment, nil
		}
		// Unreadable entries are dropped and reloaded from the store.
		_ = s.cache.Delete(ctx, key)
	} else if err != domain.ErrCacheMiss {
		logger.Get().Warn("assessment cache read failed", zap.String("id", id), zap.Error(err))
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load assessment", err)
	}
	if assessment == nil {
		return nil, domain.NewNotFoundError("assessment not found: " + id)
	}

	if payload, err := json.Marshal(assessment); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), assessmentCacheTTL); err != nil {
			logger.Get().Warn("assessment cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return assessment, nil
}

func (s *assessmentService) ListUserAssessments(ctx context.Context, userID string, statuses []domain.AssessmentStatus) ([]domain.UserAssessmentRelation, error) {
	if userID == "" {
		return nil, domain.NewInvalidInputError("user id must not be empty")
	}
	relations, err := s.relationRepo.FindByUser(ctx, userID, statuses)
	if err != nil {
		return nil, domain.NewInternalError("failed to list user assessments", err)
	}
	return relations, nil
}

func (s *assessmentService) HandleAssignmentEvent(ctx context.Context, event *domain.AssignmentEvent) error {
	if event == nil || len(event.CandidateIDs) == 0 {
		return nil
	}
	skills := SplitSkills(event.Title)
	if len(skills) == 0 {
		return domain.NewInvalidInputError("assignment event carries no skills")
	}

	for _, skill := range skills {
		assessment, err := s.CreateOrReuseAssessment(ctx, event.AssignedBy, skill, event.Difficulty, event.RelatedJobID)
		if err != nil {
			// One unbuildable skill must not sink the rest of the event.
			logger.Get().Warn("skipping skill for assignment event",
				zap.String("skill", skill), zap.Error(err))
			continue
		}
		if _, err := s.Assign(ctx, assessment, event.CandidateIDs); err != nil {
			return err
		}
	}
	return nil
}
