package services

import (
	"context"
	"errors"
	"testing"

	"ai-recruiter/internal/models"
	"ai-recruiter/internal/repositories"
)

func newVacancyService(t *testing.T, replies ...string) (VacancyService, repositories.VacancyRepository) {
	t.Helper()

	db := newTestDB(t)
	repo := repositories.NewVacancyRepository(db)
	return NewVacancyService(repo, &scriptedLLM{replies: replies}), repo
}

func TestCreateVacancyValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)

	if _, err := svc.CreateVacancy(&models.CreateVacancyRequest{SkillLevel: models.SkillMiddle}); err == nil {
		t.Fatal("expected an error for a vacancy without a name")
	}
	if _, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "x", SkillLevel: "architect"}); err == nil {
		t.Fatal("expected an error for an unknown skill level")
	}

	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{
		Name:        "Go Developer",
		Tags:        []string{"go", "grpc"},
		Description: "Backend role",
		SkillLevel:  models.SkillMiddle,
	})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}
	if vacancy.ID == 0 || len(vacancy.Tags) != 2 {
		t.Fatalf("unexpected vacancy: %+v", vacancy)
	}
}

func TestQuestionDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{
		Name: "Go Developer", SkillLevel: models.SkillJunior,
	})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	question, err := svc.CreateQuestion(vacancy.ID, &models.CreateQuestionRequest{Question: "What is a goroutine?"})
	if err != nil {
		t.Fatalf("CreateQuestion error: %v", err)
	}
	if question.Weight != 5 || question.ResponseTime != 60 {
		t.Fatalf("defaults not applied: %+v", question)
	}
}

func TestQuestionVacancyMismatch(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)
	first, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "A", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}
	second, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "B", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	question, err := svc.CreateQuestion(first.ID, &models.CreateQuestionRequest{Question: "q"})
	if err != nil {
		t.Fatalf("CreateQuestion error: %v", err)
	}

	// Addressing the question through the wrong vacancy is a 404.
	if err := svc.DeleteQuestion(second.ID, question.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGenerateQuestions(t *testing.T) {
	t.Parallel()

	const reply = `{"questions": [
		{"question": "Explain channels.", "hint_for_evaluation": "mentions blocking", "weight": 7, "response_time": 120},
		{"question": "What is an interface?", "hint_for_evaluation": "mentions method sets"}
	]}`

	svc, repo := newVacancyService(t, reply)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "Go Developer", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	questions, err := svc.GenerateQuestions(context.Background(), vacancy.ID, 2)
	if err != nil {
		t.Fatalf("GenerateQuestions error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Weight != 7 || questions[0].ResponseTime != 120 {
		t.Fatalf("explicit values not kept: %+v", questions[0])
	}
	if questions[1].Weight != 5 || questions[1].ResponseTime != 60 {
		t.Fatalf("defaults not applied to generated question: %+v", questions[1])
	}

	stored, err := repo.FindAllQuestions(vacancy.ID)
	if err != nil {
		t.Fatalf("FindAllQuestions error: %v", err)
	}
	if len(stored) != 2 || stored[0].Question != "Explain channels." {
		t.Fatalf("generated questions not persisted in order: %+v", stored)
	}
}

func TestGenerateQuestionsCountBounds(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "Go Developer", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	if _, err := svc.GenerateQuestions(context.Background(), vacancy.ID, 0); err == nil {
		t.Fatal("expected an error for count 0")
	}
	if _, err := svc.GenerateQuestions(context.Background(), vacancy.ID, 21); err == nil {
		t.Fatal("expected an error for count above the cap")
	}
}

func TestGenerateTags(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t, `{"tags": ["go", "postgres", "docker"]}`)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{
		Name:       "Go Developer",
		Tags:       []string{"stale"},
		SkillLevel: models.SkillMiddle,
	})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	updated, err := svc.GenerateTags(context.Background(), vacancy.ID)
	if err != nil {
		t.Fatalf("GenerateTags error: %v", err)
	}
	if len(updated.Tags) != 3 || updated.Tags[0] != "go" {
		t.Fatalf("tags not replaced: %v", updated.Tags)
	}
}

func TestUpdateInterviewWeightsValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "Go Developer", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	if _, err := svc.UpdateInterviewWeights(vacancy.ID, &models.InterviewWeights{RedFlagWeight: 11}); err == nil {
		t.Fatal("expected an error for weight above 10")
	}

	weights, err := svc.UpdateInterviewWeights(vacancy.ID, &models.InterviewWeights{
		RedFlagWeight:               10,
		HardSkillWeight:             7,
		SoftSkillWeight:             3,
		LogicStructureWeight:        5,
		AccordanceXpResumeWeight:    5,
		AccordanceSkillResumeWeight: 5,
	})
	if err != nil {
		t.Fatalf("UpdateInterviewWeights error: %v", err)
	}
	if weights.VacancyID != vacancy.ID || weights.RedFlagWeight != 10 {
		t.Fatalf("weights not stored: %+v", weights)
	}
}

func TestUpdateResumeWeightsValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newVacancyService(t)
	vacancy, err := svc.CreateVacancy(&models.CreateVacancyRequest{Name: "Go Developer", SkillLevel: models.SkillMiddle})
	if err != nil {
		t.Fatalf("CreateVacancy error: %v", err)
	}

	if _, err := svc.UpdateResumeWeights(vacancy.ID, &models.ResumeWeights{AccordanceXpVacancyScoreThreshold: 6}); err == nil {
		t.Fatal("expected an error for a threshold above 5")
	}

	weights, err := svc.UpdateResumeWeights(vacancy.ID, &models.ResumeWeights{
		AccordanceXpVacancyScoreThreshold:    4,
		AccordanceSkillVacancyScoreThreshold: 2,
		RecommendationWeight:                 5,
		PortfolioWeight:                      5,
	})
	if err != nil {
		t.Fatalf("UpdateResumeWeights error: %v", err)
	}
	if weights.AccordanceXpVacancyScoreThreshold != 4 {
		t.Fatalf("thresholds not stored: %+v", weights)
	}
}
