package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"ai-recruiter/internal/models"
	"ai-recruiter/internal/repositories"
)

// Actions the management prompt may return for a candidate answer.
const (
	ActionDelveIntoQuestion = "delve_into_question"
	ActionNextQuestion      = "next_question"
	ActionFinishInterview   = "finish_interview"
)

// fixedResponseTime is the response_time persisted with every evaluated
// answer. Actual elapsed time is not measured.
const fixedResponseTime = 60

var (
	ErrInterviewFinished = errors.New("interview already finished")
	ErrNoQuestions       = errors.New("vacancy has no questions")
)

type InterviewService interface {
	StartInterview(ctx context.Context, interviewID uint) (*models.StartInterviewResponse, error)
	SendAnswer(ctx context.Context, interviewID, questionID uint, audio []byte, audioFilename string) (*models.SendAnswerResponse, error)
	GetAllInterviews(vacancyID uint) ([]models.Interview, error)
	GetInterviewDetails(interviewID uint) (*models.InterviewDetailsResponse, error)
}

type interviewService struct {
	vacancyRepo   repositories.VacancyRepository
	interviewRepo repositories.InterviewRepository
	llm           LLMService
	storage       StorageService
	prompts       *PromptBuilder
	locks         keyedMutex
}

func NewInterviewService(
	vacancyRepo repositories.VacancyRepository,
	interviewRepo repositories.InterviewRepository,
	llm LLMService,
	storage StorageService,
) InterviewService {
	return &interviewService{
		vacancyRepo:   vacancyRepo,
		interviewRepo: interviewRepo,
		llm:           llm,
		storage:       storage,
		prompts:       NewPromptBuilder(),
	}
}

type helloReply struct {
	MessageToCandidate string `json:"message_to_candidate"`
}

func (r *helloReply) Validate() error {
	if r.MessageToCandidate == "" {
		return fmt.Errorf("missing required field: message_to_candidate")
	}
	return nil
}

type managementReply struct {
	Action             string `json:"action"`
	MessageToCandidate string `json:"message_to_candidate"`
}

func (r *managementReply) Validate() error {
	switch r.Action {
	case ActionDelveIntoQuestion, ActionNextQuestion, ActionFinishInterview:
	default:
		return fmt.Errorf("unknown action: %q", r.Action)
	}
	if r.MessageToCandidate == "" {
		return fmt.Errorf("missing required field: message_to_candidate")
	}
	return nil
}

type evaluationReply struct {
	Score              *int   `json:"score"`
	MessageToCandidate string `json:"message_to_candidate"`
	MessageToHR        string `json:"message_to_hr"`
}

func (r *evaluationReply) Validate() error {
	if r.Score == nil {
		return fmt.Errorf("missing required field: score")
	}
	if *r.Score < 0 || *r.Score > 10 {
		return fmt.Errorf("score out of range: %d", *r.Score)
	}
	return nil
}

type summaryReply struct {
	RedFlagScore               *int     `json:"red_flag_score"`
	HardSkillScore             *int     `json:"hard_skill_score"`
	SoftSkillScore             *int     `json:"soft_skill_score"`
	LogicStructureScore        *int     `json:"logic_structure_score"`
	AccordanceXpResumeScore    *int     `json:"accordance_xp_resume_score"`
	AccordanceSkillResumeScore *int     `json:"accordance_skill_resume_score"`
	StrongAreas                string   `json:"strong_areas"`
	WeakAreas                  string   `json:"weak_areas"`
	ApprovedSkills             []string `json:"approved_skills"`
	MessageToCandidate         string   `json:"message_to_candidate"`
	MessageToHR                string   `json:"message_to_hr"`
}

func (r *summaryReply) Validate() error {
	fields := map[string]*int{
		"red_flag_score":                r.RedFlagScore,
		"hard_skill_score":              r.HardSkillScore,
		"soft_skill_score":              r.SoftSkillScore,
		"logic_structure_score":         r.LogicStructureScore,
		"accordance_xp_resume_score":    r.AccordanceXpResumeScore,
		"accordance_skill_resume_score": r.AccordanceSkillResumeScore,
	}
	for name, value := range fields {
		if value == nil {
			return fmt.Errorf("missing required field: %s", name)
		}
		if *value < 0 || *value > criterionMax {
			return fmt.Errorf("%s out of range: %d", name, *value)
		}
	}
	return nil
}

// StartInterview implements InterviewService.
func (s *interviewService) StartInterview(ctx context.Context, interviewID uint) (*models.StartInterviewResponse, error) {
	unlock := s.locks.lock(interviewID)
	defer unlock()

	interview, err := s.interviewRepo.FindInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.GeneralResult != models.ResultInProcess {
		return nil, fmt.Errorf("interview %d: %w", interviewID, ErrInterviewFinished)
	}

	vacancy, err := s.vacancyRepo.FindByID(interview.VacancyID)
	if err != nil {
		return nil, err
	}
	questions, err := s.vacancyRepo.FindAllQuestions(vacancy.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("vacancy %d: %w", vacancy.ID, ErrNoQuestions)
	}
	firstQuestion := questions[0]

	systemPrompt := s.prompts.BuildHelloPrompt(vacancy, questions, interview.CandidateName)
	history := []ChatMessage{{Role: "user", Text: "Start the interview."}}

	var reply helloReply
	if err := s.llm.GenerateJSON(ctx, history, systemPrompt, 0.5, "", nil, &reply); err != nil {
		return nil, fmt.Errorf("failed to generate greeting: %w", err)
	}

	audioName, audioFid, err := s.speakAndStore(ctx, interviewID, firstQuestion.ID, reply.MessageToCandidate)
	if err != nil {
		return nil, err
	}

	message := models.InterviewMessage{
		InterviewID: interviewID,
		QuestionID:  firstQuestion.ID,
		AudioName:   audioName,
		AudioFid:    audioFid,
		Role:        models.RoleAssistant,
		Text:        reply.MessageToCandidate,
	}
	if err := s.interviewRepo.CreateMessage(&message); err != nil {
		return nil, err
	}

	// A repeated start reuses the first question's answer row instead of
	// creating a duplicate.
	answer, err := s.interviewRepo.FindCandidateAnswer(firstQuestion.ID, interviewID)
	if errors.Is(err, repositories.ErrNotFound) {
		answer, err = s.interviewRepo.CreateCandidateAnswer(firstQuestion.ID, interviewID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.interviewRepo.AddMessageToCandidateAnswer(message.ID, answer.ID); err != nil {
		return nil, err
	}

	log.Info().
		Uint("interview_id", interviewID).
		Int("total_questions", len(questions)).
		Msg("interview started")

	return &models.StartInterviewResponse{
		MessageToCandidate: reply.MessageToCandidate,
		TotalQuestion:      len(questions),
		QuestionID:         firstQuestion.ID,
		LLMAudioFilename:   audioName,
		LLMAudioFid:        audioFid,
	}, nil
}

// SendAnswer implements InterviewService. It transcribes and persists the
// candidate's audio turn, lets the LLM pick the next action, and advances
// the state machine accordingly.
func (s *interviewService) SendAnswer(ctx context.Context, interviewID, questionID uint, audio []byte, audioFilename string) (*models.SendAnswerResponse, error) {
	unlock := s.locks.lock(interviewID)
	defer unlock()

	interview, err := s.interviewRepo.FindInterviewByID(interviewID)
	if err != nil {
		return nil, err
	}
	if interview.GeneralResult != models.ResultInProcess {
		return nil, fmt.Errorf("interview %d: %w", interviewID, ErrInterviewFinished)
	}

	vacancy, err := s.vacancyRepo.FindByID(interview.VacancyID)
	if err != nil {
		return nil, err
	}
	questions, err := s.vacancyRepo.FindAllQuestions(vacancy.ID)
	if err != nil {
		return nil, err
	}

	questionIndex := -1
	for i, q := range questions {
		if q.ID == questionID {
			questionIndex = i
			break
		}
	}
	if questionIndex == -1 {
		return nil, fmt.Errorf("question %d in vacancy %d: %w", questionID, vacancy.ID, repositories.ErrNotFound)
	}
	currentQuestion := questions[questionIndex]
	isLast := questionIndex == len(questions)-1

	answer, err := s.interviewRepo.FindCandidateAnswer(questionID, interviewID)
	if err != nil {
		return nil, err
	}

	// 1. Transcribe and persist the candidate's turn.
	transcript, err := s.llm.TranscribeAudio(ctx, audio, audioFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe answer: %w", err)
	}
	userAudioFid, err := s.storage.Upload(bytes.NewReader(audio), audioFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to store answer audio: %w", err)
	}
	userMessage := models.InterviewMessage{
		InterviewID: interviewID,
		QuestionID:  questionID,
		AudioName:   audioFilename,
		AudioFid:    userAudioFid,
		Role:        models.RoleUser,
		Text:        transcript,
	}
	if err := s.interviewRepo.CreateMessage(&userMessage); err != nil {
		return nil, err
	}
	if err := s.interviewRepo.AddMessageToCandidateAnswer(userMessage.ID, answer.ID); err != nil {
		return nil, err
	}

	// 2. Let the LLM classify the answer into an action.
	messages, err := s.interviewRepo.FindMessages(interviewID)
	if err != nil {
		return nil, err
	}
	systemPrompt := s.prompts.BuildManagementPrompt(vacancy, questions, questionIndex+1)

	var reply managementReply
	if err := s.llm.GenerateJSON(ctx, toChatHistory(messages), systemPrompt, 0.5, "", nil, &reply); err != nil {
		return nil, fmt.Errorf("failed to classify answer: %w", err)
	}

	// 3. Voice the assistant's reply and persist it against the current
	// question.
	audioName, audioFid, err := s.speakAndStore(ctx, interviewID, questionID, reply.MessageToCandidate)
	if err != nil {
		return nil, err
	}
	assistantMessage := models.InterviewMessage{
		InterviewID: interviewID,
		QuestionID:  questionID,
		AudioName:   audioName,
		AudioFid:    audioFid,
		Role:        models.RoleAssistant,
		Text:        reply.MessageToCandidate,
	}
	if err := s.interviewRepo.CreateMessage(&assistantMessage); err != nil {
		return nil, err
	}

	log.Info().
		Uint("interview_id", interviewID).
		Uint("question_id", questionID).
		Str("action", reply.Action).
		Msg("answer classified")

	// 4. Dispatch on the action.
	switch {
	case reply.Action == ActionDelveIntoQuestion:
		if err := s.interviewRepo.AddMessageToCandidateAnswer(assistantMessage.ID, answer.ID); err != nil {
			return nil, err
		}
		return &models.SendAnswerResponse{
			QuestionID:         questionID,
			MessageToCandidate: reply.MessageToCandidate,
			LLMAudioFilename:   audioName,
			LLMAudioFid:        audioFid,
		}, nil

	case reply.Action == ActionNextQuestion && !isLast:
		if err := s.evaluateAnswer(ctx, vacancy, &currentQuestion, interviewID, answer.ID); err != nil {
			return nil, err
		}

		nextQuestion := questions[questionIndex+1]
		nextAnswer, err := s.interviewRepo.FindCandidateAnswer(nextQuestion.ID, interviewID)
		if errors.Is(err, repositories.ErrNotFound) {
			nextAnswer, err = s.interviewRepo.CreateCandidateAnswer(nextQuestion.ID, interviewID)
		}
		if err != nil {
			return nil, err
		}
		if err := s.interviewRepo.AddMessageToCandidateAnswer(assistantMessage.ID, nextAnswer.ID); err != nil {
			return nil, err
		}

		return &models.SendAnswerResponse{
			QuestionID:         nextQuestion.ID,
			MessageToCandidate: reply.MessageToCandidate,
			LLMAudioFilename:   audioName,
			LLMAudioFid:        audioFid,
		}, nil

	default:
		// finish_interview anywhere, or next_question on the last
		// question: evaluate, then run the finish sequence.
		if err := s.interviewRepo.AddMessageToCandidateAnswer(assistantMessage.ID, answer.ID); err != nil {
			return nil, err
		}
		if err := s.evaluateAnswer(ctx, vacancy, &currentQuestion, interviewID, answer.ID); err != nil {
			return nil, err
		}

		result, err := s.finishInterview(ctx, vacancy, questions, interviewID)
		if err != nil {
			return nil, err
		}

		return &models.SendAnswerResponse{
			QuestionID:         questionID,
			MessageToCandidate: reply.MessageToCandidate,
			InterviewResult:    result,
			LLMAudioFilename:   audioName,
			LLMAudioFid:        audioFid,
		}, nil
	}
}

// evaluateAnswer scores one answered question against its rubric using only
// the turns that belong to that question.
func (s *interviewService) evaluateAnswer(ctx context.Context, vacancy *models.Vacancy, question *models.VacancyQuestion, interviewID, answerID uint) error {
	messages, err := s.interviewRepo.FindMessages(interviewID)
	if err != nil {
		return err
	}

	var subHistory []ChatMessage
	for _, m := range messages {
		if m.QuestionID == question.ID {
			subHistory = append(subHistory, ChatMessage{Role: string(m.Role), Text: m.Text})
		}
	}

	systemPrompt := s.prompts.BuildEvaluationPrompt(vacancy, question)

	var reply evaluationReply
	if err := s.llm.GenerateJSON(ctx, subHistory, systemPrompt, 0.3, "", nil, &reply); err != nil {
		return fmt.Errorf("failed to evaluate answer: %w", err)
	}

	return s.interviewRepo.EvaluateCandidateAnswer(
		answerID,
		*reply.Score,
		reply.MessageToCandidate,
		reply.MessageToHR,
		fixedResponseTime,
	)
}

// finishInterview runs the summary call, computes the weighted verdict and
// writes everything onto the interview row in one update.
func (s *interviewService) finishInterview(ctx context.Context, vacancy *models.Vacancy, questions []models.VacancyQuestion, interviewID uint) (*models.Interview, error) {
	messages, err := s.interviewRepo.FindMessages(interviewID)
	if err != nil {
		return nil, err
	}
	history := append(toChatHistory(messages), ChatMessage{
		Role: "user",
		Text: "The interview is over. Summarize it per the system prompt.",
	})

	systemPrompt := s.prompts.BuildSummaryPrompt(vacancy, questions)

	var reply summaryReply
	if err := s.llm.GenerateJSON(ctx, history, systemPrompt, 0.3, "", nil, &reply); err != nil {
		return nil, fmt.Errorf("failed to summarize interview: %w", err)
	}

	weights, err := s.vacancyRepo.GetInterviewWeights(vacancy.ID)
	if err != nil {
		return nil, err
	}

	scores := CriterionScores{
		RedFlag:               *reply.RedFlagScore,
		HardSkill:             *reply.HardSkillScore,
		SoftSkill:             *reply.SoftSkillScore,
		LogicStructure:        *reply.LogicStructureScore,
		AccordanceXpResume:    *reply.AccordanceXpResumeScore,
		AccordanceSkillResume: *reply.AccordanceSkillResumeScore,
	}
	generalScore := ComputeGeneralScore(scores, weights)
	generalResult := ResolveGeneralResult(generalScore)

	err = s.interviewRepo.FillInterviewCriterion(interviewID, &repositories.InterviewCriterionData{
		RedFlagScore:               scores.RedFlag,
		HardSkillScore:             scores.HardSkill,
		SoftSkillScore:             scores.SoftSkill,
		LogicStructureScore:        scores.LogicStructure,
		AccordanceXpResumeScore:    scores.AccordanceXpResume,
		AccordanceSkillResumeScore: scores.AccordanceSkillResume,
		StrongAreas:                reply.StrongAreas,
		WeakAreas:                  reply.WeakAreas,
		ApprovedSkills:             reply.ApprovedSkills,
		GeneralScore:               generalScore,
		GeneralResult:              generalResult,
		MessageToCandidate:         reply.MessageToCandidate,
		MessageToHR:                reply.MessageToHR,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("interview_id", interviewID).
		Int("general_score", generalScore).
		Str("general_result", string(generalResult)).
		Msg("interview finished")

	return s.interviewRepo.FindInterviewByID(interviewID)
}

// GetAllInterviews implements InterviewService.
func (s *interviewService) GetAllInterviews(vacancyID uint) ([]models.Interview, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	return s.interviewRepo.FindAllInterviews(vacancyID)
}

// GetInterviewDetails implements InterviewService.
func (s *interviewService) GetInterviewDetails(interviewID uint) (*models.InterviewDetailsResponse, error) {
	if _, err := s.interviewRepo.FindInterviewByID(interviewID); err != nil {
		return nil, err
	}
	answers, err := s.interviewRepo.FindCandidateAnswers(interviewID)
	if err != nil {
		return nil, err
	}
	messages, err := s.interviewRepo.FindMessages(interviewID)
	if err != nil {
		return nil, err
	}
	return &models.InterviewDetailsResponse{
		CandidateAnswers:  answers,
		InterviewMessages: messages,
	}, nil
}

func (s *interviewService) speakAndStore(ctx context.Context, interviewID, questionID uint, text string) (string, string, error) {
	speech, err := s.llm.TextToSpeech(ctx, text)
	if err != nil {
		return "", "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	audioName := fmt.Sprintf("interview_%d_question_%d.wav", interviewID, questionID)
	fid, err := s.storage.Upload(bytes.NewReader(speech), audioName)
	if err != nil {
		return "", "", fmt.Errorf("failed to store speech audio: %w", err)
	}
	return audioName, fid, nil
}

func toChatHistory(messages []models.InterviewMessage) []ChatMessage {
	history := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, ChatMessage{Role: string(m.Role), Text: m.Text})
	}
	return history
}

// keyedMutex serializes concurrent calls for the same interview id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (k *keyedMutex) lock(key uint) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uint]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
