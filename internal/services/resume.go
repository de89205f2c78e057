package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ai-recruiter/internal/models"
	"ai-recruiter/internal/repositories"
)

const (
	// maxResumeBatch caps one evaluation request.
	maxResumeBatch = 20
	// resumeConcurrency limits parallel LLM calls during a batch.
	resumeConcurrency = 4
)

var ErrBatchTooLarge = fmt.Errorf("too many resumes in one batch (max %d)", maxResumeBatch)

// ResumeFile is one uploaded resume PDF.
type ResumeFile struct {
	Filename string
	Data     []byte
}

type ResumeService interface {
	EvaluateResumes(ctx context.Context, vacancyID uint, files []ResumeFile) (*models.EvaluateResumesResponse, error)
	SearchCandidates(ctx context.Context, query string, vacancyID uint, limit int) ([]models.CandidateSearchResult, error)
}

type resumeService struct {
	vacancyRepo   repositories.VacancyRepository
	interviewRepo repositories.InterviewRepository
	llm           LLMService
	storage       StorageService
	pdfParser     PDFParserService
	index         ResumeIndexService
	worker        NotificationWorker
	prompts       *PromptBuilder
}

func NewResumeService(
	vacancyRepo repositories.VacancyRepository,
	interviewRepo repositories.InterviewRepository,
	llm LLMService,
	storage StorageService,
	pdfParser PDFParserService,
	index ResumeIndexService,
	worker NotificationWorker,
) ResumeService {
	return &resumeService{
		vacancyRepo:   vacancyRepo,
		interviewRepo: interviewRepo,
		llm:           llm,
		storage:       storage,
		pdfParser:     pdfParser,
		index:         index,
		worker:        worker,
		prompts:       NewPromptBuilder(),
	}
}

type resumeReply struct {
	CandidateName               string `json:"candidate_name"`
	CandidateEmail              string `json:"candidate_email"`
	CandidatePhone              string `json:"candidate_phone"`
	CandidateTelegram           string `json:"candidate_telegram"`
	AccordanceXpVacancyScore    *int   `json:"accordance_xp_vacancy_score"`
	AccordanceSkillVacancyScore *int   `json:"accordance_skill_vacancy_score"`
	MessageToCandidate          string `json:"message_to_candidate"`
	MessageToHR                 string `json:"message_to_hr"`
}

func (r *resumeReply) Validate() error {
	if r.AccordanceXpVacancyScore == nil {
		return fmt.Errorf("missing required field: accordance_xp_vacancy_score")
	}
	if r.AccordanceSkillVacancyScore == nil {
		return fmt.Errorf("missing required field: accordance_skill_vacancy_score")
	}
	for name, v := range map[string]int{
		"accordance_xp_vacancy_score":    *r.AccordanceXpVacancyScore,
		"accordance_skill_vacancy_score": *r.AccordanceSkillVacancyScore,
	} {
		if v < 0 || v > criterionMax {
			return fmt.Errorf("%s out of range: %d", name, v)
		}
	}
	return nil
}

// EvaluateResumes implements ResumeService. Each file is screened
// independently; one malformed resume never fails the batch.
func (s *resumeService) EvaluateResumes(ctx context.Context, vacancyID uint, files []ResumeFile) (*models.EvaluateResumesResponse, error) {
	if len(files) == 0 {
		return &models.EvaluateResumesResponse{Results: []models.ResumeEvaluationResult{}}, nil
	}
	if len(files) > maxResumeBatch {
		return nil, ErrBatchTooLarge
	}

	vacancy, err := s.vacancyRepo.FindByID(vacancyID)
	if err != nil {
		return nil, err
	}
	weights, err := s.vacancyRepo.GetResumeWeights(vacancyID)
	if err != nil {
		return nil, err
	}

	results := make([]models.ResumeEvaluationResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resumeConcurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = s.evaluateOne(gctx, vacancy, weights, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.EvaluateResumesResponse{Results: results}, nil
}

func (s *resumeService) evaluateOne(ctx context.Context, vacancy *models.Vacancy, weights *models.ResumeWeights, file ResumeFile) models.ResumeEvaluationResult {
	result := models.ResumeEvaluationResult{Filename: file.Filename}

	systemPrompt := s.prompts.BuildResumeEvaluationPrompt(vacancy)
	history := []ChatMessage{{Role: "user", Text: "Evaluate the attached resume."}}

	var reply resumeReply
	if err := s.llm.GenerateJSON(ctx, history, systemPrompt, 0.3, "", file.Data, &reply); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("resume evaluation failed")
		result.Error = err.Error()
		return result
	}

	result.MessageToCandidate = reply.MessageToCandidate
	result.MessageToHR = reply.MessageToHR

	accepted := *reply.AccordanceXpVacancyScore >= weights.AccordanceXpVacancyScoreThreshold &&
		*reply.AccordanceSkillVacancyScore >= weights.AccordanceSkillVacancyScoreThreshold
	result.Accepted = accepted
	if !accepted {
		log.Info().
			Str("filename", file.Filename).
			Int("xp_score", *reply.AccordanceXpVacancyScore).
			Int("skill_score", *reply.AccordanceSkillVacancyScore).
			Msg("resume rejected by thresholds")
		return result
	}

	fid, err := s.storage.Upload(bytes.NewReader(file.Data), file.Filename)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	interview := models.Interview{
		VacancyID:                   vacancy.ID,
		CandidateName:               orUnknown(reply.CandidateName),
		CandidateEmail:              orUnknown(reply.CandidateEmail),
		CandidatePhone:              orUnknown(reply.CandidatePhone),
		CandidateTelegram:           orUnknown(reply.CandidateTelegram),
		ResumeFid:                   fid,
		ResumeFilename:              file.Filename,
		AccordanceXpVacancyScore:    *reply.AccordanceXpVacancyScore,
		AccordanceSkillVacancyScore: *reply.AccordanceSkillVacancyScore,
		GeneralResult:               models.ResultInProcess,
	}
	if err := s.interviewRepo.CreateInterview(&interview); err != nil {
		result.Error = err.Error()
		return result
	}
	result.InterviewID = interview.ID

	s.indexResume(ctx, &interview, file.Data)
	s.notifyCandidate(&interview, reply.MessageToCandidate)

	log.Info().
		Uint("interview_id", interview.ID).
		Str("candidate", interview.CandidateName).
		Msg("resume accepted, interview created")
	return result
}

// indexResume is best effort: a search index outage never blocks screening.
func (s *resumeService) indexResume(ctx context.Context, interview *models.Interview, pdfData []byte) {
	if s.index == nil {
		return
	}
	text, err := s.pdfParser.ExtractText(pdfData)
	if err != nil {
		log.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to extract resume text")
		return
	}
	embedding, err := s.llm.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to embed resume")
		return
	}
	if err := s.index.IndexResume(ctx, interview.ID, interview.VacancyID, interview.CandidateName, text, embedding); err != nil {
		log.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to index resume")
	}
}

func (s *resumeService) notifyCandidate(interview *models.Interview, message string) {
	if s.worker == nil || message == "" {
		return
	}
	if interview.CandidateEmail != models.UnknownField {
		s.worker.Enqueue(Notification{
			Channel:   ChannelEmail,
			Recipient: interview.CandidateEmail,
			Subject:   "Your application: next steps",
			Body:      message,
		})
	}
	if interview.CandidateTelegram != models.UnknownField {
		s.worker.Enqueue(Notification{
			Channel:   ChannelTelegram,
			Recipient: interview.CandidateTelegram,
			Body:      message,
		})
	}
}

// SearchCandidates implements ResumeService.
func (s *resumeService) SearchCandidates(ctx context.Context, query string, vacancyID uint, limit int) ([]models.CandidateSearchResult, error) {
	if s.index == nil {
		return nil, fmt.Errorf("candidate search is not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	embedding, err := s.llm.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}
	return s.index.SearchCandidates(ctx, embedding, vacancyID, limit)
}

func orUnknown(value string) string {
	if value == "" {
		return models.UnknownField
	}
	return value
}
