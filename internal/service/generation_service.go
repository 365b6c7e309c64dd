package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talentforge/internal/config"
	"talentforge/internal/domain"
	"talentforge/internal/logger"
	"talentforge/internal/parser"
	"talentforge/internal/util"
)

// GenerationService keeps the per-skill challenge pool stocked up to the
// configured cap by asking the completion source for fresh batches.
type GenerationService interface {
	// EnsureSkillQuota tops the pool for (skill, difficulty) up to the cap
	// and returns how many net-new challenges were persisted.
	EnsureSkillQuota(ctx context.Context, skill string, difficulty domain.Difficulty) (int, error)
}

type generationService struct {
	challengeRepo domain.ChallengeRepository
	completion    domain.CompletionSource
	parser        *parser.TextToRecords
	cfg           config.GenerationConfig
}

func NewGenerationService(
	challengeRepo domain.ChallengeRepository,
	completion domain.CompletionSource,
	cfg config.GenerationConfig,
) GenerationService {
	return &generationService{
		challengeRepo: challengeRepo,
		completion:    completion,
		parser:        parser.NewTextToRecords(),
		cfg:           cfg,
	}
}

// Deficit returns how many challenges are missing from a pool holding
// existing entries against the given cap. It is never negative.
func Deficit(existing, cap int) int {
	if existing >= cap {
		return 0
	}
	return cap - existing
}

func (s *generationService) EnsureSkillQuota(ctx context.Context, skill string, difficulty domain.Difficulty) (int, error) {
	skill = domain.NormalizeSkill(skill)
	if skill == "" {
		return 0, domain.NewInvalidInputError("skill must not be empty")
	}
	if !s.cfg.OpenAIEnabled {
		return 0, nil
	}

	existing, err := s.challengeRepo.CountBySkill(ctx, skill, difficulty)
	if err != nil {
		return 0, domain.NewInternalError("failed to count pool challenges", err)
	}
	deficit := Deficit(existing, s.cfg.MaxQuestionsCap)
	if deficit == 0 {
		return 0, nil
	}

	persisted := 0
	for iteration := 0; iteration < s.cfg.MaxIterations && persisted < deficit; iteration++ {
		remaining := deficit - persisted
		batch, err := s.generateBatch(ctx, skill, difficulty, remaining)
		if err != nil {
			return persisted, err
		}
		if len(batch) == 0 {
			continue
		}
		if err := s.challengeRepo.SaveAll(ctx, batch); err != nil {
			return persisted, domain.NewInternalError("failed to persist challenge batch", err)
		}
		persisted += len(batch)
		logger.Get().Debug("persisted challenge batch",
			zap.String("skill", skill),
			zap.String("difficulty", string(difficulty)),
			zap.Int("batch_size", len(batch)),
			zap.Int("persisted", persisted),
			zap.Int("deficit", deficit))
	}

	if persisted < deficit {
		return persisted, domain.NewQuotaUnmetError(skill, persisted, deficit)
	}
	return persisted, nil
}

// generateBatch asks the completion source for one batch and parses it into
// pool challenges, truncated so a generous completion never overshoots the
// remaining deficit.
func (s *generationService) generateBatch(ctx context.Context, skill string, difficulty domain.Difficulty, remaining int) ([]domain.Challenge, error) {
	size := s.cfg.BatchSize
	if remaining < size {
		size = remaining
	}
	prompt := fmt.Sprintf("Create %d %s %s questions with options and correct answers",
		size, difficulty.PromptLabel(), skill)

	text, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, domain.NewCompletionUnavailableError(err)
	}

	records := s.parser.Parse(text)
	if len(records) > remaining {
		records = records[:remaining]
	}
	now := time.Now()
	for i := range records {
		records[i].ID = util.NewULID()
		records[i].Skill = skill
		records[i].Difficulty = difficulty
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
	}
	return records, nil
}
