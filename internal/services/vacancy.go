package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"ai-recruiter/internal/models"
	"ai-recruiter/internal/repositories"
)

// ErrValidation marks request payloads that fail domain validation; the
// HTTP layer maps it to 400.
var ErrValidation = errors.New("validation failed")

type VacancyService interface {
	CreateVacancy(req *models.CreateVacancyRequest) (*models.Vacancy, error)
	UpdateVacancy(id uint, req *models.CreateVacancyRequest) (*models.Vacancy, error)
	DeleteVacancy(id uint) error
	GetVacancy(id uint) (*models.Vacancy, error)
	GetAllVacancies() ([]models.Vacancy, error)

	CreateQuestion(vacancyID uint, req *models.CreateQuestionRequest) (*models.VacancyQuestion, error)
	UpdateQuestion(vacancyID, questionID uint, req *models.CreateQuestionRequest) (*models.VacancyQuestion, error)
	DeleteQuestion(vacancyID, questionID uint) error
	GetQuestions(vacancyID uint) ([]models.VacancyQuestion, error)
	GenerateQuestions(ctx context.Context, vacancyID uint, count int) ([]models.VacancyQuestion, error)
	GenerateTags(ctx context.Context, vacancyID uint) (*models.Vacancy, error)

	GetInterviewWeights(vacancyID uint) (*models.InterviewWeights, error)
	UpdateInterviewWeights(vacancyID uint, weights *models.InterviewWeights) (*models.InterviewWeights, error)
	GetResumeWeights(vacancyID uint) (*models.ResumeWeights, error)
	UpdateResumeWeights(vacancyID uint, weights *models.ResumeWeights) (*models.ResumeWeights, error)
}

type vacancyService struct {
	vacancyRepo repositories.VacancyRepository
	llm         LLMService
	prompts     *PromptBuilder
}

func NewVacancyService(vacancyRepo repositories.VacancyRepository, llm LLMService) VacancyService {
	return &vacancyService{
		vacancyRepo: vacancyRepo,
		llm:         llm,
		prompts:     NewPromptBuilder(),
	}
}

func validateSkillLevel(level models.SkillLevel) error {
	switch level {
	case models.SkillJunior, models.SkillMiddle, models.SkillSenior, models.SkillLead:
		return nil
	default:
		return fmt.Errorf("invalid skill level %q: %w", level, ErrValidation)
	}
}

// CreateVacancy implements VacancyService.
func (s *vacancyService) CreateVacancy(req *models.CreateVacancyRequest) (*models.Vacancy, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("vacancy name is required: %w", ErrValidation)
	}
	if err := validateSkillLevel(req.SkillLevel); err != nil {
		return nil, err
	}

	var vacancy models.Vacancy
	if err := copier.Copy(&vacancy, req); err != nil {
		return nil, fmt.Errorf("failed to map vacancy request: %w", err)
	}
	vacancy.Tags = datatypes.NewJSONSlice(req.Tags)

	if err := s.vacancyRepo.Create(&vacancy); err != nil {
		return nil, err
	}
	log.Info().Uint("vacancy_id", vacancy.ID).Str("name", vacancy.Name).Msg("vacancy created")
	return &vacancy, nil
}

// UpdateVacancy implements VacancyService.
func (s *vacancyService) UpdateVacancy(id uint, req *models.CreateVacancyRequest) (*models.Vacancy, error) {
	if err := validateSkillLevel(req.SkillLevel); err != nil {
		return nil, err
	}
	vacancy, err := s.vacancyRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if err := copier.Copy(vacancy, req); err != nil {
		return nil, fmt.Errorf("failed to map vacancy request: %w", err)
	}
	vacancy.Tags = datatypes.NewJSONSlice(req.Tags)

	if err := s.vacancyRepo.Update(vacancy); err != nil {
		return nil, err
	}
	return vacancy, nil
}

// DeleteVacancy implements VacancyService.
func (s *vacancyService) DeleteVacancy(id uint) error {
	if _, err := s.vacancyRepo.FindByID(id); err != nil {
		return err
	}
	return s.vacancyRepo.Delete(id)
}

// GetVacancy implements VacancyService.
func (s *vacancyService) GetVacancy(id uint) (*models.Vacancy, error) {
	return s.vacancyRepo.FindByID(id)
}

// GetAllVacancies implements VacancyService.
func (s *vacancyService) GetAllVacancies() ([]models.Vacancy, error) {
	return s.vacancyRepo.FindAll()
}

// CreateQuestion implements VacancyService.
func (s *vacancyService) CreateQuestion(vacancyID uint, req *models.CreateQuestionRequest) (*models.VacancyQuestion, error) {
	if req.Question == "" {
		return nil, fmt.Errorf("question text is required: %w", ErrValidation)
	}
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}

	question := models.VacancyQuestion{VacancyID: vacancyID}
	if err := copier.Copy(&question, req); err != nil {
		return nil, fmt.Errorf("failed to map question request: %w", err)
	}
	if question.Weight == 0 {
		question.Weight = 5
	}
	if question.ResponseTime == 0 {
		question.ResponseTime = 60
	}

	if err := s.vacancyRepo.CreateQuestion(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

// UpdateQuestion implements VacancyService.
func (s *vacancyService) UpdateQuestion(vacancyID, questionID uint, req *models.CreateQuestionRequest) (*models.VacancyQuestion, error) {
	question, err := s.questionInVacancy(vacancyID, questionID)
	if err != nil {
		return nil, err
	}
	if err := copier.Copy(question, req); err != nil {
		return nil, fmt.Errorf("failed to map question request: %w", err)
	}
	if err := s.vacancyRepo.UpdateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion implements VacancyService.
func (s *vacancyService) DeleteQuestion(vacancyID, questionID uint) error {
	if _, err := s.questionInVacancy(vacancyID, questionID); err != nil {
		return err
	}
	return s.vacancyRepo.DeleteQuestion(questionID)
}

// GetQuestions implements VacancyService.
func (s *vacancyService) GetQuestions(vacancyID uint) ([]models.VacancyQuestion, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	return s.vacancyRepo.FindAllQuestions(vacancyID)
}

type generatedQuestionsReply struct {
	Questions []models.CreateQuestionRequest `json:"questions"`
}

func (r *generatedQuestionsReply) Validate() error {
	if len(r.Questions) == 0 {
		return fmt.Errorf("missing required field: questions")
	}
	for i, q := range r.Questions {
		if q.Question == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
	}
	return nil
}

// GenerateQuestions implements VacancyService. Generated questions are
// persisted in the order the model produced them.
func (s *vacancyService) GenerateQuestions(ctx context.Context, vacancyID uint, count int) ([]models.VacancyQuestion, error) {
	if count < 1 || count > 20 {
		return nil, fmt.Errorf("question count must be between 1 and 20: %w", ErrValidation)
	}
	vacancy, err := s.vacancyRepo.FindByID(vacancyID)
	if err != nil {
		return nil, err
	}

	systemPrompt := s.prompts.BuildQuestionGenerationPrompt(vacancy, count)
	history := []ChatMessage{{Role: "user", Text: "Generate the interview questions."}}

	var reply generatedQuestionsReply
	if err := s.llm.GenerateJSON(ctx, history, systemPrompt, 0.7, "", nil, &reply); err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions := make([]models.VacancyQuestion, 0, len(reply.Questions))
	for _, q := range reply.Questions {
		question := models.VacancyQuestion{
			VacancyID:         vacancyID,
			Question:          q.Question,
			HintForEvaluation: q.HintForEvaluation,
			Weight:            q.Weight,
			ResponseTime:      q.ResponseTime,
		}
		if question.Weight == 0 {
			question.Weight = 5
		}
		if question.ResponseTime == 0 {
			question.ResponseTime = 60
		}
		if err := s.vacancyRepo.CreateQuestion(&question); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	log.Info().Uint("vacancy_id", vacancyID).Int("count", len(questions)).Msg("questions generated")
	return questions, nil
}

type generatedTagsReply struct {
	Tags []string `json:"tags"`
}

func (r *generatedTagsReply) Validate() error {
	if len(r.Tags) == 0 {
		return fmt.Errorf("missing required field: tags")
	}
	return nil
}

// GenerateTags implements VacancyService. It replaces the vacancy's tags
// with LLM-proposed ones.
func (s *vacancyService) GenerateTags(ctx context.Context, vacancyID uint) (*models.Vacancy, error) {
	vacancy, err := s.vacancyRepo.FindByID(vacancyID)
	if err != nil {
		return nil, err
	}

	systemPrompt := s.prompts.BuildTagGenerationPrompt(vacancy)
	history := []ChatMessage{{Role: "user", Text: "Generate the skill tags."}}

	var reply generatedTagsReply
	if err := s.llm.GenerateJSON(ctx, history, systemPrompt, 0.3, "", nil, &reply); err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}

	vacancy.Tags = datatypes.NewJSONSlice(reply.Tags)
	if err := s.vacancyRepo.Update(vacancy); err != nil {
		return nil, err
	}
	return vacancy, nil
}

// GetInterviewWeights implements VacancyService.
func (s *vacancyService) GetInterviewWeights(vacancyID uint) (*models.InterviewWeights, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	return s.vacancyRepo.GetInterviewWeights(vacancyID)
}

// UpdateInterviewWeights implements VacancyService.
func (s *vacancyService) UpdateInterviewWeights(vacancyID uint, weights *models.InterviewWeights) (*models.InterviewWeights, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	if err := validateWeightRange(
		weights.RedFlagWeight,
		weights.HardSkillWeight,
		weights.SoftSkillWeight,
		weights.LogicStructureWeight,
		weights.AccordanceXpResumeWeight,
		weights.AccordanceSkillResumeWeight,
	); err != nil {
		return nil, err
	}
	weights.VacancyID = vacancyID
	if err := s.vacancyRepo.UpsertInterviewWeights(weights); err != nil {
		return nil, err
	}
	return s.vacancyRepo.GetInterviewWeights(vacancyID)
}

// GetResumeWeights implements VacancyService.
func (s *vacancyService) GetResumeWeights(vacancyID uint) (*models.ResumeWeights, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	return s.vacancyRepo.GetResumeWeights(vacancyID)
}

// UpdateResumeWeights implements VacancyService.
func (s *vacancyService) UpdateResumeWeights(vacancyID uint, weights *models.ResumeWeights) (*models.ResumeWeights, error) {
	if _, err := s.vacancyRepo.FindByID(vacancyID); err != nil {
		return nil, err
	}
	for _, v := range []int{weights.AccordanceXpVacancyScoreThreshold, weights.AccordanceSkillVacancyScoreThreshold} {
		if v < 0 || v > criterionMax {
			return nil, fmt.Errorf("threshold %d out of range: %w", v, ErrValidation)
		}
	}
	if err := validateWeightRange(weights.RecommendationWeight, weights.PortfolioWeight); err != nil {
		return nil, err
	}
	weights.VacancyID = vacancyID
	if err := s.vacancyRepo.UpsertResumeWeights(weights); err != nil {
		return nil, err
	}
	return s.vacancyRepo.GetResumeWeights(vacancyID)
}

func (s *vacancyService) questionInVacancy(vacancyID, questionID uint) (*models.VacancyQuestion, error) {
	question, err := s.vacancyRepo.FindQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.VacancyID != vacancyID {
		return nil, fmt.Errorf("question %d in vacancy %d: %w", questionID, vacancyID, repositories.ErrNotFound)
	}
	return question, nil
}

func validateWeightRange(values ...int) error {
	for _, v := range values {
		if v < 0 || v > 10 {
			return fmt.Errorf("weight %d out of range: %w", v, ErrValidation)
		}
	}
	return nil
}
