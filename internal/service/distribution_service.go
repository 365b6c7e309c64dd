package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"talentforge/internal/cache"
	"talentforge/internal/domain"
	"talentforge/internal/logger"
)

const emailLookupTTL = time.Hour

// DistributionService turns inbound skill-change events into stocked
// assessments for the originating user, and forwards explicit assignment
// requests once assignee emails are resolved to user ids.
type DistributionService interface {
	HandleSkillsChanged(ctx context.Context, event *domain.SkillsChangedEvent) error
}

type distributionService struct {
	assessments AssessmentService
	userRepo    domain.UserRepository
	cache       domain.Cache
	publisher   domain.EventPublisher
}

func NewDistributionService(
	assessments AssessmentService,
	userRepo domain.UserRepository,
	cacheClient domain.Cache,
	publisher domain.EventPublisher,
) DistributionService {
	return &distributionService{
		assessments: assessments,
		userRepo:    userRepo,
		cache:       cacheClient,
		publisher:   publisher,
	}
}

func (s *distributionService) HandleSkillsChanged(ctx context.Context, event *domain.SkillsChangedEvent) error {
	if event == nil || event.UserID == "" {
		return domain.NewInvalidInputError("skills event carries no user")
	}

	for _, raw := range event.Skills {
		skill := domain.NormalizeSkill(raw)
		if skill == "" {
			continue
		}
		assessment, err := s.assessments.CreateOrReuseAssessment(ctx, domain.SystemOwner, skill, domain.DifficultyBeginner, "")
		if err != nil {
			// A skill the pool cannot serve yet is retried on the next
			// event; the remaining skills still get their assessments.
			logger.Get().Warn("skipping skill for user",
				zap.String("user_id", event.UserID),
				zap.String("skill", skill),
				zap.Error(err))
			continue
		}
		if _, err := s.assessments.Assign(ctx, assessment, []string{event.UserID}); err != nil {
			return err
		}
	}

	if event.AssessmentRequest != nil && len(event.AssessmentRequest.AssigneeEmails) > 0 {
		return s.forwardAssignment(ctx, event.AssessmentRequest)
	}
	return nil
}

// forwardAssignment resolves assignee emails to internal user ids and
// publishes the derived assignment event. Unknown emails are dropped.
func (s *distributionService) forwardAssignment(ctx context.Context, request *domain.AssessmentRequest) error {
	candidateIDs, err := s.resolveEmails(ctx, request.AssigneeEmails)
	if err != nil {
		return err
	}
	if len(candidateIDs) == 0 {
		logger.Get().Warn("assignment request resolves to no known users",
			zap.String("title", request.Title),
			zap.Int("emails", len(request.AssigneeEmails)))
		return nil
	}

	derived := &domain.AssignmentEvent{
		AssignedBy:   request.AssignedBy,
		Title:        request.Title,
		Difficulty:   domain.DifficultyFromString(request.Difficulty),
		RelatedJobID: request.RelatedJobID,
		CandidateIDs: candidateIDs,
	}
	if err := s.publisher.PublishAssignment(ctx, derived); err != nil {
		return domain.NewInternalError("failed to publish assignment event", err)
	}
	logger.Get().Info("forwarded assignment request",
		zap.String("title", request.Title),
		zap.Int("candidates", len(candidateIDs)))
	return nil
}

// resolveEmails maps emails to user ids through a cache lookaside backed
// by the user store.
func (s *distributionService) resolveEmails(ctx context.Context, emails []string) ([]string, error) {
	seen := make(map[string]struct{}, len(emails))
	var ids []string
	var misses []string

	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}

		id, err := s.cache.Get(ctx, cache.UserEmailKey(email))
		if err == nil && id != "" {
			ids = append(ids, id)
			continue
		}
		if err != nil && err != domain.ErrCacheMiss {
			logger.Get().Warn("email cache read failed", zap.Error(err))
		}
		misses = append(misses, email)
	}

	if len(misses) > 0 {
		users, err := s.userRepo.FindByEmails(ctx, misses)
		if err != nil {
			return nil, domain.NewInternalError("failed to resolve assignee emails", err)
		}
		for _, user := range users {
			ids = append(ids, user.ID)
			if err := s.cache.Set(ctx, cache.UserEmailKey(user.Email), user.ID, emailLookupTTL); err != nil {
				logger.Get().Warn("email cache write failed", zap.Error(err))
			}
		}
	}
	return ids, nil
}
