package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ai-recruiter/internal/config"
	"ai-recruiter/internal/models"
	"ai-recruiter/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// scriptedLLM replays canned Generate replies in order. Transcription,
// speech and embeddings return fixed values and do not consume the script.
type scriptedLLM struct {
	replies []string
	calls   int
}

func (s *scriptedLLM) Generate(_ context.Context, _ []ChatMessage, _ string, _ float32, _ string, _ []byte) (string, error) {
	if s.calls >= len(s.replies) {
		return "", fmt.Errorf("unexpected llm call %d", s.calls)
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte, target interface{}) error {
	return GenerateJSON(ctx, s, history, systemPrompt, temperature, model, pdfFile, target)
}

func (s *scriptedLLM) TranscribeAudio(context.Context, []byte, string) (string, error) {
	return "transcribed answer", nil
}

func (s *scriptedLLM) TextToSpeech(context.Context, string) ([]byte, error) {
	return []byte("fake-audio"), nil
}

func (s *scriptedLLM) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

// memoryStorage keeps blobs in a map.
type memoryStorage struct {
	blobs map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{blobs: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(src io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	fid := fmt.Sprintf("fid-%d-%s", len(m.blobs), filename)
	m.blobs[fid] = data
	return fid, nil
}

func (m *memoryStorage) Download(fid string) (io.ReadCloser, string, error) {
	data, ok := m.blobs[fid]
	if !ok {
		return nil, "", fmt.Errorf("blob %s: %w", fid, repositories.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), "application/octet-stream", nil
}

func (m *memoryStorage) Delete(fid string) error {
	delete(m.blobs, fid)
	return nil
}

func (m *memoryStorage) EnsureUploadDir() error { return nil }

type interviewFixture struct {
	db            *gorm.DB
	vacancyRepo   repositories.VacancyRepository
	interviewRepo repositories.InterviewRepository
	vacancy       models.Vacancy
	questions     []models.VacancyQuestion
	interview     models.Interview
}

func newInterviewFixture(t *testing.T, questionCount int) *interviewFixture {
	t.Helper()

	db := newTestDB(t)
	vacancyRepo := repositories.NewVacancyRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)

	vacancy := models.Vacancy{
		Name:        "Backend Engineer",
		Description: "Go services and infrastructure",
		RedFlags:    "lying about experience",
		SkillLevel:  models.SkillMiddle,
	}
	if err := vacancyRepo.Create(&vacancy); err != nil {
		t.Fatalf("failed to create vacancy: %v", err)
	}

	var questions []models.VacancyQuestion
	for i := 0; i < questionCount; i++ {
		q := models.VacancyQuestion{
			VacancyID:         vacancy.ID,
			Question:          fmt.Sprintf("Question number %d", i+1),
			HintForEvaluation: "a complete answer mentions tradeoffs",
			Weight:            5,
			ResponseTime:      120,
		}
		if err := vacancyRepo.CreateQuestion(&q); err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
		questions = append(questions, q)
	}

	interview := models.Interview{
		VacancyID:         vacancy.ID,
		CandidateName:     "Jordan Doe",
		CandidateEmail:    "jordan@example.com",
		CandidatePhone:    models.UnknownField,
		CandidateTelegram: models.UnknownField,
		ResumeFid:         "fid-resume",
		ResumeFilename:    "resume.pdf",
		GeneralResult:     models.ResultInProcess,
	}
	if err := interviewRepo.CreateInterview(&interview); err != nil {
		t.Fatalf("failed to create interview: %v", err)
	}

	return &interviewFixture{
		db:            db,
		vacancyRepo:   vacancyRepo,
		interviewRepo: interviewRepo,
		vacancy:       vacancy,
		questions:     questions,
		interview:     interview,
	}
}

func (f *interviewFixture) service(replies ...string) InterviewService {
	return NewInterviewService(f.vacancyRepo, f.interviewRepo, &scriptedLLM{replies: replies}, newMemoryStorage())
}

const (
	helloJSON        = `{"message_to_candidate": "Welcome! First question: tell me about Go."}`
	delveJSON        = `{"action": "delve_into_question", "message_to_candidate": "Can you expand on that?"}`
	nextJSON         = `{"action": "next_question", "message_to_candidate": "Great, next question."}`
	finishJSON       = `{"action": "finish_interview", "message_to_candidate": "Thanks, that wraps it up."}`
	evaluationJSON   = `{"score": 8, "message_to_candidate": "Good answer.", "message_to_hr": "Solid grasp of the topic."}`
	perfectSummary   = `{"red_flag_score": 0, "hard_skill_score": 5, "soft_skill_score": 5, "logic_structure_score": 5, "accordance_xp_resume_score": 5, "accordance_skill_resume_score": 5, "strong_areas": "system design", "weak_areas": "none", "approved_skills": ["go", "sql"], "message_to_candidate": "Thank you!", "message_to_hr": "Strong hire."}`
)

func TestStartInterview(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(helloJSON)

	resp, err := svc.StartInterview(context.Background(), f.interview.ID)
	if err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}

	if resp.TotalQuestion != 2 {
		t.Fatalf("TotalQuestion = %d, want 2", resp.TotalQuestion)
	}
	if resp.QuestionID != f.questions[0].ID {
		t.Fatalf("QuestionID = %d, want first question %d", resp.QuestionID, f.questions[0].ID)
	}
	if resp.MessageToCandidate == "" || resp.LLMAudioFid == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	messages, err := f.interviewRepo.FindMessages(f.interview.ID)
	if err != nil {
		t.Fatalf("FindMessages error: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != models.RoleAssistant {
		t.Fatalf("expected one assistant message, got %+v", messages)
	}

	answer, err := f.interviewRepo.FindCandidateAnswer(f.questions[0].ID, f.interview.ID)
	if err != nil {
		t.Fatalf("FindCandidateAnswer error: %v", err)
	}
	if len(answer.MessageIDs) != 1 || answer.MessageIDs[0] != messages[0].ID {
		t.Fatalf("greeting not linked to the first answer: %+v", answer)
	}
}

func TestStartInterviewIsRepeatable(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(helloJSON, helloJSON)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("first StartInterview error: %v", err)
	}
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("second StartInterview error: %v", err)
	}

	answers, err := f.interviewRepo.FindCandidateAnswers(f.interview.ID)
	if err != nil {
		t.Fatalf("FindCandidateAnswers error: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected the first question's answer to be reused, got %d answers", len(answers))
	}
	if len(answers[0].MessageIDs) != 2 {
		t.Fatalf("expected both greetings linked to the answer, got %d", len(answers[0].MessageIDs))
	}
}

func TestStartInterviewWithoutQuestions(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 0)
	svc := f.service()

	_, err := svc.StartInterview(context.Background(), f.interview.ID)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("got %v, want ErrNoQuestions", err)
	}
}

func TestSendAnswerDelve(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(helloJSON, delveJSON)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}

	resp, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[0].ID, []byte("audio"), "answer.wav")
	if err != nil {
		t.Fatalf("SendAnswer error: %v", err)
	}

	if resp.QuestionID != f.questions[0].ID {
		t.Fatalf("delve must stay on the same question, got %d", resp.QuestionID)
	}
	if resp.InterviewResult != nil {
		t.Fatal("delve must not finish the interview")
	}

	answer, err := f.interviewRepo.FindCandidateAnswer(f.questions[0].ID, f.interview.ID)
	if err != nil {
		t.Fatalf("FindCandidateAnswer error: %v", err)
	}
	if answer.Score != 0 {
		t.Fatalf("delve must not score the answer, got %d", answer.Score)
	}
	// Greeting, candidate turn and follow-up all belong to the answer.
	if len(answer.MessageIDs) != 3 {
		t.Fatalf("expected 3 linked messages, got %d", len(answer.MessageIDs))
	}
}

func TestSendAnswerAdvancesToNextQuestion(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(helloJSON, nextJSON, evaluationJSON)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}

	resp, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[0].ID, []byte("audio"), "answer.wav")
	if err != nil {
		t.Fatalf("SendAnswer error: %v", err)
	}

	if resp.QuestionID != f.questions[1].ID {
		t.Fatalf("QuestionID = %d, want next question %d", resp.QuestionID, f.questions[1].ID)
	}
	if resp.InterviewResult != nil {
		t.Fatal("advancing must not finish the interview")
	}

	scored, err := f.interviewRepo.FindCandidateAnswer(f.questions[0].ID, f.interview.ID)
	if err != nil {
		t.Fatalf("FindCandidateAnswer error: %v", err)
	}
	if scored.Score != 8 {
		t.Fatalf("Score = %d, want 8", scored.Score)
	}
	if scored.MessageToCandidate != "Good answer." || scored.MessageToHR != "Solid grasp of the topic." {
		t.Fatalf("evaluation messages not persisted: %+v", scored)
	}
	if scored.ResponseTime != fixedResponseTime {
		t.Fatalf("ResponseTime = %d, want %d", scored.ResponseTime, fixedResponseTime)
	}

	nextAnswer, err := f.interviewRepo.FindCandidateAnswer(f.questions[1].ID, f.interview.ID)
	if err != nil {
		t.Fatalf("next answer not created: %v", err)
	}
	if len(nextAnswer.MessageIDs) != 1 {
		t.Fatalf("the transition message must open the next answer, got %d links", len(nextAnswer.MessageIDs))
	}
}

func TestSendAnswerFinishesOnLastQuestion(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(
		helloJSON,
		nextJSON, evaluationJSON, // answer question 1
		nextJSON, evaluationJSON, perfectSummary, // answer question 2, next on last finishes
	)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}
	if _, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[0].ID, []byte("audio"), "a1.wav"); err != nil {
		t.Fatalf("first SendAnswer error: %v", err)
	}

	resp, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[1].ID, []byte("audio"), "a2.wav")
	if err != nil {
		t.Fatalf("second SendAnswer error: %v", err)
	}

	if resp.InterviewResult == nil {
		t.Fatal("expected the interview result on the final answer")
	}
	result := resp.InterviewResult
	if result.GeneralScore != 10 {
		t.Fatalf("GeneralScore = %d, want 10", result.GeneralScore)
	}
	if result.GeneralResult != models.ResultNext {
		t.Fatalf("GeneralResult = %s, want NEXT", result.GeneralResult)
	}
	if result.RedFlagScore != 0 || result.HardSkillScore != 5 {
		t.Fatalf("criterion scores not persisted: %+v", result)
	}
	if len(result.ApprovedSkills) != 2 {
		t.Fatalf("ApprovedSkills = %v", result.ApprovedSkills)
	}
	if result.MessageToHR != "Strong hire." {
		t.Fatalf("MessageToHR = %q", result.MessageToHR)
	}

	// The interview is terminal now.
	_, err = svc.SendAnswer(ctx, f.interview.ID, f.questions[1].ID, []byte("audio"), "a3.wav")
	if !errors.Is(err, ErrInterviewFinished) {
		t.Fatalf("got %v, want ErrInterviewFinished", err)
	}
	_, err = svc.StartInterview(ctx, f.interview.ID)
	if !errors.Is(err, ErrInterviewFinished) {
		t.Fatalf("restart after finish: got %v, want ErrInterviewFinished", err)
	}
}

func TestSendAnswerEarlyFinish(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 3)
	svc := f.service(helloJSON, finishJSON, evaluationJSON, perfectSummary)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}

	resp, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[0].ID, []byte("audio"), "a1.wav")
	if err != nil {
		t.Fatalf("SendAnswer error: %v", err)
	}

	if resp.InterviewResult == nil {
		t.Fatal("finish_interview on the first question must produce the result")
	}
	if resp.QuestionID != f.questions[0].ID {
		t.Fatalf("QuestionID = %d, want the current question", resp.QuestionID)
	}

	stored, err := f.interviewRepo.FindInterviewByID(f.interview.ID)
	if err != nil {
		t.Fatalf("FindInterviewByID error: %v", err)
	}
	if stored.GeneralResult == models.ResultInProcess {
		t.Fatal("interview row still IN_PROCESS after finish")
	}
}

func TestSendAnswerUnknownQuestion(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 1)
	svc := f.service(helloJSON)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}

	_, err := svc.SendAnswer(ctx, f.interview.ID, 9999, []byte("audio"), "a.wav")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetInterviewDetails(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	svc := f.service(helloJSON, delveJSON)

	ctx := context.Background()
	if _, err := svc.StartInterview(ctx, f.interview.ID); err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}
	if _, err := svc.SendAnswer(ctx, f.interview.ID, f.questions[0].ID, []byte("audio"), "a.wav"); err != nil {
		t.Fatalf("SendAnswer error: %v", err)
	}

	details, err := svc.GetInterviewDetails(f.interview.ID)
	if err != nil {
		t.Fatalf("GetInterviewDetails error: %v", err)
	}
	if len(details.CandidateAnswers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(details.CandidateAnswers))
	}
	if len(details.InterviewMessages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(details.InterviewMessages))
	}
	for i := 1; i < len(details.InterviewMessages); i++ {
		if details.InterviewMessages[i].ID < details.InterviewMessages[i-1].ID {
			t.Fatal("messages are not in conversation order")
		}
	}
}
