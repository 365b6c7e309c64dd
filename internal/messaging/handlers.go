package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"talentforge/internal/domain"
	"talentforge/internal/service"
)

// SkillsChangedHandler decodes skill-change events and hands them to the
// distribution pipeline.
func SkillsChangedHandler(svc service.DistributionService) Handler {
	return func(ctx context.Context, payload []byte) error {
		var event domain.SkillsChangedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return svc.HandleSkillsChanged(ctx, &event)
	}
}

// AssignmentHandler decodes forwarded assignment events and hands them to
// the assessment service.
func AssignmentHandler(svc service.AssessmentService) Handler {
	return func(ctx context.Context, payload []byte) error {
		var event domain.AssignmentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return svc.HandleAssignmentEvent(ctx, &event)
	}
}
