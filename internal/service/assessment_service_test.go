package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talentforge/internal/cache"
	"talentforge/internal/config"
	"talentforge/internal/domain"
)

var testAssessmentConfig = config.AssessmentConfig{PassThreshold: 65.0}

type assessmentServiceFixture struct {
	assessmentRepo *MockAssessmentRepository
	challengeRepo  *MockChallengeRepository
	relationRepo   *MockRelationRepository
	generation     *MockGenerationService
	txManager      *MockTransactionManager
	cache          *MockCache
	svc            AssessmentService
}

func newAssessmentServiceFixture() *assessmentServiceFixture {
	f := &assessmentServiceFixture{
		assessmentRepo: new(MockAssessmentRepository),
		challengeRepo:  new(MockChallengeRepository),
		relationRepo:   new(MockRelationRepository),
		generation:     new(MockGenerationService),
		txManager:      new(MockTransactionManager),
		cache:          new(MockCache),
	}
	f.svc = NewAssessmentService(
		f.assessmentRepo, f.challengeRepo, f.relationRepo,
		f.generation, f.txManager, f.cache,
		testAssessmentConfig, testGenerationConfig,
	)
	return f
}

func gradedAssessment(id string, questions int) *domain.Assessment {
	a := &domain.Assessment{
		ID:         id,
		Title:      "GOLANG",
		Difficulty: domain.DifficultyBeginner,
		CreatedBy:  domain.SystemOwner,
		Questions:  questions,
	}
	for i := 0; i < questions; i++ {
		a.Challenges = append(a.Challenges, domain.Challenge{
			ID:       fmt.Sprintf("ch-%d", i),
			Question: fmt.Sprintf("%d. Question?", i+1),
			Options:  []string{"Yes", "No"},
			Answer:   fmt.Sprintf("Answer: a. Option %d", i),
		})
	}
	return a
}

func expectAssessmentCacheMiss(f *assessmentServiceFixture, assessment *domain.Assessment) {
	f.cache.On("Get", mock.Anything, cache.AssessmentKey(assessment.ID)).Return("", domain.ErrCacheMiss)
	f.assessmentRepo.On("GetByID", mock.Anything, assessment.ID).Return(assessment, nil)
	f.cache.On("Set", mock.Anything, cache.AssessmentKey(assessment.ID), mock.Anything, assessmentCacheTTL).Return(nil)
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"JAVA", "REACTJS"}, SplitSkills("java, reactJs"))
	assert.Equal(t, []string{"GOLANG"}, SplitSkills("  golang  "))
	assert.Nil(t, SplitSkills(" , ,"))
}

func TestSubmitAboveThresholdCompletes(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 5)
	relation := domain.NewRelationForCandidate("user-1", assessment)
	relation.ID = "rel-1"

	f.relationRepo.On("FindPending", mock.Anything, "user-1", "as-1").Return(relation, nil)
	expectAssessmentCacheMiss(f, assessment)
	f.relationRepo.On("UpdateStatus", mock.Anything, "rel-1", domain.StatusCompleted).Return(nil)

	// Four of five correct, one wrong.
	answers := map[string]string{
		"ch-0": "Answer: a. Option 0",
		"ch-1": "Answer: a. Option 1",
		"ch-2": "Answer: a. Option 2",
		"ch-3": "Answer: a. Option 3",
		"ch-4": "Answer: b. Something else",
	}
	result, err := f.svc.Submit(context.Background(), "user-1", "as-1", answers)

	require.NoError(t, err)
	assert.Equal(t, 4, result.Correct)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 80.0, result.PassPercentage)
	assert.Equal(t, domain.StatusCompleted, result.Status)
	f.relationRepo.AssertExpectations(t)
}

func TestSubmitBelowThresholdFails(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 5)
	relation := domain.NewRelationForCandidate("user-1", assessment)
	relation.ID = "rel-1"

	f.relationRepo.On("FindPending", mock.Anything, "user-1", "as-1").Return(relation, nil)
	expectAssessmentCacheMiss(f, assessment)
	f.relationRepo.On("UpdateStatus", mock.Anything, "rel-1", domain.StatusFailed).Return(nil)

	// Exactly 3/5 lands on 60.0, below the 65.0 threshold.
	answers := map[string]string{
		"ch-0": "Answer: a. Option 0",
		"ch-1": "Answer: a. Option 1",
		"ch-2": "Answer: a. Option 2",
	}
	result, err := f.svc.Submit(context.Background(), "user-1", "as-1", answers)

	require.NoError(t, err)
	assert.Equal(t, 60.0, result.PassPercentage)
	assert.Equal(t, domain.StatusFailed, result.Status)
}

func TestSubmitAnswerComparisonIsExact(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 1)
	relation := domain.NewRelationForCandidate("user-1", assessment)
	relation.ID = "rel-1"

	f.relationRepo.On("FindPending", mock.Anything, "user-1", "as-1").Return(relation, nil)
	expectAssessmentCacheMiss(f, assessment)
	f.relationRepo.On("UpdateStatus", mock.Anything, "rel-1", domain.StatusFailed).Return(nil)

	// Case-flipped and padded variants of the stored answer score zero.
	answers := map[string]string{"ch-0": "  ANSWER: A. OPTION 0  "}
	result, err := f.svc.Submit(context.Background(), "user-1", "as-1", answers)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, domain.StatusFailed, result.Status)
}

func TestSubmitWithoutPendingRelation(t *testing.T) {
	f := newAssessmentServiceFixture()

	f.relationRepo.On("FindPending", mock.Anything, "user-1", "as-1").Return(nil, nil)

	_, err := f.svc.Submit(context.Background(), "user-1", "as-1", map[string]string{})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrSubmissionNotFound, domainErr.Code)
	f.relationRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitEmptyAssessmentIsRejected(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 0)
	relation := domain.NewRelationForCandidate("user-1", assessment)
	relation.ID = "rel-1"

	f.relationRepo.On("FindPending", mock.Anything, "user-1", "as-1").Return(relation, nil)
	expectAssessmentCacheMiss(f, assessment)

	_, err := f.svc.Submit(context.Background(), "user-1", "as-1", map[string]string{})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrEmptyAssessment, domainErr.Code)
	f.relationRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignSkipsAlreadyLinkedUsers(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 5)
	already := domain.UserAssessmentRelation{ID: "rel-a", UserID: "user-a", AssessmentID: "as-1"}

	f.relationRepo.On("FindByUsersAndAssessment", mock.Anything, []string{"user-a", "user-b"}, "as-1").
		Return([]domain.UserAssessmentRelation{already}, nil)
	f.relationRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(relations []domain.UserAssessmentRelation) bool {
		return len(relations) == 1 &&
			relations[0].UserID == "user-b" &&
			relations[0].Status == domain.StatusPending &&
			relations[0].Type == domain.RelationAssigned
	})).Return(nil)

	created, err := f.svc.Assign(context.Background(), assessment, []string{"user-a", "user-b"})

	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "user-b", created[0].UserID)
	f.relationRepo.AssertExpectations(t)
}

func TestAssignAllLinkedIsNoOp(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 5)
	already := domain.UserAssessmentRelation{ID: "rel-a", UserID: "user-a", AssessmentID: "as-1"}

	f.relationRepo.On("FindByUsersAndAssessment", mock.Anything, []string{"user-a"}, "as-1").
		Return([]domain.UserAssessmentRelation{already}, nil)

	created, err := f.svc.Assign(context.Background(), assessment, []string{"user-a"})

	require.NoError(t, err)
	assert.Empty(t, created)
	f.relationRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestCreateOrReuseReturnsExisting(t *testing.T) {
	f := newAssessmentServiceFixture()
	existing := gradedAssessment("as-1", 5)

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, domain.SystemOwner, "GOLANG", domain.DifficultyBeginner).
		Return(existing, nil)

	got, err := f.svc.CreateOrReuseAssessment(context.Background(), domain.SystemOwner, "golang", domain.DifficultyBeginner, "")

	require.NoError(t, err)
	assert.Same(t, existing, got)
	f.generation.AssertNotCalled(t, "EnsureSkillQuota", mock.Anything, mock.Anything, mock.Anything)
	f.assessmentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateOrReuseMaterializesFromPool(t *testing.T) {
	f := newAssessmentServiceFixture()
	pool := []domain.Challenge{
		{ID: "pool-1", Question: "1. A?", Options: []string{"x", "y"}, Answer: "x", Skill: "GOLANG", Difficulty: domain.DifficultyBeginner},
		{ID: "pool-2", Question: "2. B?", Options: []string{"x", "y"}, Answer: "y", Skill: "GOLANG", Difficulty: domain.DifficultyBeginner},
	}

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, "owner-1", "GOLANG", domain.DifficultyBeginner).
		Return(nil, nil)
	f.generation.On("EnsureSkillQuota", mock.Anything, "GOLANG", domain.DifficultyBeginner).Return(0, nil)
	f.challengeRepo.On("FindBySkill", mock.Anything, "GOLANG", domain.DifficultyBeginner, 15).Return(pool, nil)
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.assessmentRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.Assessment) bool {
		return a.ID != "" && a.Title == "GOLANG" && a.CreatedBy == "owner-1" && a.Questions == 2
	})).Return(nil)
	// Pool rows are copied under fresh ids and bound to the new assessment.
	f.challengeRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(batch []domain.Challenge) bool {
		if len(batch) != 2 {
			return false
		}
		for _, c := range batch {
			if c.ID == "" || c.ID == "pool-1" || c.ID == "pool-2" || c.AssessmentID == "" {
				return false
			}
		}
		return true
	})).Return(nil)
	f.relationRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(relations []domain.UserAssessmentRelation) bool {
		return len(relations) == 1 &&
			relations[0].UserID == "owner-1" &&
			relations[0].Type == domain.RelationCreated &&
			relations[0].Status == domain.StatusDefault
	})).Return(nil)

	got, err := f.svc.CreateOrReuseAssessment(context.Background(), "owner-1", "golang", domain.DifficultyBeginner, "job-9")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "job-9", got.RelatedJobID)
	assert.Len(t, got.Challenges, 2)
	f.assessmentRepo.AssertExpectations(t)
	f.challengeRepo.AssertExpectations(t)
	f.relationRepo.AssertExpectations(t)
}

func TestCreateOrReuseSystemOwnerGetsNoRelation(t *testing.T) {
	f := newAssessmentServiceFixture()
	pool := []domain.Challenge{
		{ID: "pool-1", Question: "1. A?", Options: []string{"x", "y"}, Answer: "x"},
		{ID: "pool-2", Question: "2. B?", Options: []string{"x", "y"}, Answer: "y"},
	}

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, domain.SystemOwner, "GOLANG", domain.DifficultyBeginner).
		Return(nil, nil)
	f.generation.On("EnsureSkillQuota", mock.Anything, "GOLANG", domain.DifficultyBeginner).Return(0, nil)
	f.challengeRepo.On("FindBySkill", mock.Anything, "GOLANG", domain.DifficultyBeginner, 15).Return(pool, nil)
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.assessmentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.challengeRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateOrReuseAssessment(context.Background(), "", "golang", domain.DifficultyBeginner, "")

	require.NoError(t, err)
	f.relationRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestCreateOrReuseEmptyPool(t *testing.T) {
	f := newAssessmentServiceFixture()

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, domain.SystemOwner, "COBOL", domain.DifficultyBeginner).
		Return(nil, nil)
	f.generation.On("EnsureSkillQuota", mock.Anything, "COBOL", domain.DifficultyBeginner).
		Return(0, domain.NewQuotaUnmetError("COBOL", 0, 15))
	f.challengeRepo.On("FindBySkill", mock.Anything, "COBOL", domain.DifficultyBeginner, 15).
		Return([]domain.Challenge{}, nil)

	_, err := f.svc.CreateOrReuseAssessment(context.Background(), domain.SystemOwner, "cobol", domain.DifficultyBeginner, "")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrEmptyAssessment, domainErr.Code)
	f.assessmentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateOrReuseLosingRaceReturnsWinner(t *testing.T) {
	f := newAssessmentServiceFixture()
	pool := []domain.Challenge{
		{ID: "pool-1", Question: "1. A?", Options: []string{"x", "y"}, Answer: "x"},
		{ID: "pool-2", Question: "2. B?", Options: []string{"x", "y"}, Answer: "y"},
	}
	winner := gradedAssessment("as-winner", 2)

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, domain.SystemOwner, "GOLANG", domain.DifficultyBeginner).
		Return(nil, nil).Once()
	f.generation.On("EnsureSkillQuota", mock.Anything, "GOLANG", domain.DifficultyBeginner).Return(0, nil)
	f.challengeRepo.On("FindBySkill", mock.Anything, "GOLANG", domain.DifficultyBeginner, 15).Return(pool, nil)
	f.txManager.On("WithTransaction", mock.Anything).Return(errors.New("ORA-00001: unique constraint violated"))
	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, domain.SystemOwner, "GOLANG", domain.DifficultyBeginner).
		Return(winner, nil).Once()

	got, err := f.svc.CreateOrReuseAssessment(context.Background(), domain.SystemOwner, "golang", domain.DifficultyBeginner, "")

	require.NoError(t, err)
	assert.Same(t, winner, got)
}

func TestGetAssessmentCacheHit(t *testing.T) {
	f := newAssessmentServiceFixture()
	assessment := gradedAssessment("as-1", 2)
	payload, err := json.Marshal(assessment)
	require.NoError(t, err)

	f.cache.On("Get", mock.Anything, cache.AssessmentKey("as-1")).Return(string(payload), nil)

	got, err := f.svc.GetAssessment(context.Background(), "as-1")

	require.NoError(t, err)
	assert.Equal(t, assessment.ID, got.ID)
	assert.Len(t, got.Challenges, 2)
	f.assessmentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetAssessmentNotFound(t *testing.T) {
	f := newAssessmentServiceFixture()

	f.cache.On("Get", mock.Anything, cache.AssessmentKey("missing")).Return("", domain.ErrCacheMiss)
	f.assessmentRepo.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	_, err := f.svc.GetAssessment(context.Background(), "missing")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrNotFound, domainErr.Code)
}

func TestListUserAssessmentsRequiresUser(t *testing.T) {
	f := newAssessmentServiceFixture()

	_, err := f.svc.ListUserAssessments(context.Background(), "", nil)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrInvalidInput, domainErr.Code)
}

func TestHandleAssignmentEventSplitsSkills(t *testing.T) {
	f := newAssessmentServiceFixture()
	javaAssessment := gradedAssessment("as-java", 5)
	javaAssessment.Title = "JAVA"
	goAssessment := gradedAssessment("as-go", 5)
	goAssessment.Title = "GOLANG"

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, "owner-1", "JAVA", domain.DifficultyIntermediate).
		Return(javaAssessment, nil)
	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, "owner-1", "GOLANG", domain.DifficultyIntermediate).
		Return(goAssessment, nil)
	f.relationRepo.On("FindByUsersAndAssessment", mock.Anything, []string{"user-1", "user-2"}, "as-java").
		Return([]domain.UserAssessmentRelation{}, nil)
	f.relationRepo.On("FindByUsersAndAssessment", mock.Anything, []string{"user-1", "user-2"}, "as-go").
		Return([]domain.UserAssessmentRelation{}, nil)
	f.relationRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(relations []domain.UserAssessmentRelation) bool {
		return len(relations) == 2
	})).Return(nil).Times(2)

	err := f.svc.HandleAssignmentEvent(context.Background(), &domain.AssignmentEvent{
		AssignedBy:   "owner-1",
		Title:        "java, golang",
		Difficulty:   domain.DifficultyIntermediate,
		CandidateIDs: []string{"user-1", "user-2"},
	})

	require.NoError(t, err)
	f.relationRepo.AssertExpectations(t)
}

func TestHandleAssignmentEventSkipsUnbuildableSkill(t *testing.T) {
	f := newAssessmentServiceFixture()
	goAssessment := gradedAssessment("as-go", 5)

	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, "owner-1", "COBOL", domain.DifficultyBeginner).
		Return(nil, nil)
	f.generation.On("EnsureSkillQuota", mock.Anything, "COBOL", domain.DifficultyBeginner).
		Return(0, domain.NewQuotaUnmetError("COBOL", 0, 15))
	f.challengeRepo.On("FindBySkill", mock.Anything, "COBOL", domain.DifficultyBeginner, 15).
		Return([]domain.Challenge{}, nil)
	f.assessmentRepo.On("FindByOwnerTitleDifficulty", mock.Anything, "owner-1", "GOLANG", domain.DifficultyBeginner).
		Return(goAssessment, nil)
	f.relationRepo.On("FindByUsersAndAssessment", mock.Anything, []string{"user-1"}, "as-go").
		Return([]domain.UserAssessmentRelation{}, nil)
	f.relationRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.HandleAssignmentEvent(context.Background(), &domain.AssignmentEvent{
		AssignedBy:   "owner-1",
		Title:        "cobol, golang",
		Difficulty:   domain.DifficultyBeginner,
		CandidateIDs: []string{"user-1"},
	})

	require.NoError(t, err)
	f.relationRepo.AssertExpectations(t)
}
