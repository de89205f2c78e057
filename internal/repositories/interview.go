package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ai-recruiter/internal/models"
)

type InterviewRepository interface {
	CreateInterview(interview *models.Interview) error
	FindInterviewByID(id uint) (*models.Interview, error)
	FindAllInterviews(vacancyID uint) ([]models.Interview, error)
	FillInterviewCriterion(id uint, data *InterviewCriterionData) error

	CreateMessage(message *models.InterviewMessage) error
	FindMessages(interviewID uint) ([]models.InterviewMessage, error)

	CreateCandidateAnswer(questionID, interviewID uint) (*models.CandidateAnswer, error)
	FindCandidateAnswer(questionID, interviewID uint) (*models.CandidateAnswer, error)
	FindCandidateAnswers(interviewID uint) ([]models.CandidateAnswer, error)
	AddMessageToCandidateAnswer(messageID, answerID uint) error
	EvaluateCandidateAnswer(answerID uint, score int, messageToCandidate, messageToHR string, responseTime int) error
}

// InterviewCriterionData is everything the finish sequence writes onto the
// interview row in one update.
type InterviewCriterionData struct {
	RedFlagScore               int
	HardSkillScore             int
	SoftSkillScore             int
	LogicStructureScore        int
	AccordanceXpResumeScore    int
	AccordanceSkillResumeScore int
	StrongAreas                string
	WeakAreas                  string
	ApprovedSkills             []string
	GeneralScore               int
	GeneralResult              models.GeneralResult
	MessageToCandidate         string
	MessageToHR                string
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) CreateInterview(interview *models.Interview) error {
	if err := r.db.Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindInterviewByID(id uint) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("interview %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	return &interview, nil
}

func (r *interviewRepository) FindAllInterviews(vacancyID uint) ([]models.Interview, error) {
	var interviews []models.Interview
	if err := r.db.Where("vacancy_id = ?", vacancyID).Order("created_at DESC").Find(&interviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}

func (r *interviewRepository) FillInterviewCriterion(id uint, data *InterviewCriterionData) error {
	result := r.db.Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"red_flag_score":                data.RedFlagScore,
			"hard_skill_score":              data.HardSkillScore,
			"soft_skill_score":              data.SoftSkillScore,
			"logic_structure_score":         data.LogicStructureScore,
			"accordance_xp_resume_score":    data.AccordanceXpResumeScore,
			"accordance_skill_resume_score": data.AccordanceSkillResumeScore,
			"strong_areas":                  data.StrongAreas,
			"weak_areas":                    data.WeakAreas,
			"approved_skills":               datatypes.NewJSONSlice(data.ApprovedSkills),
			"general_score":                 data.GeneralScore,
			"general_result":                data.GeneralResult,
			"message_to_candidate":          data.MessageToCandidate,
			"message_to_hr":                 data.MessageToHR,
			"updated_at":                    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to fill interview criterion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("interview %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *interviewRepository) CreateMessage(message *models.InterviewMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create interview message: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindMessages(interviewID uint) ([]models.InterviewMessage, error) {
	var messages []models.InterviewMessage
	err := r.db.Where("interview_id = ?", interviewID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interview messages: %w", err)
	}
	return messages, nil
}

func (r *interviewRepository) CreateCandidateAnswer(questionID, interviewID uint) (*models.CandidateAnswer, error) {
	answer := models.CandidateAnswer{
		QuestionID:  questionID,
		InterviewID: interviewID,
	}
	if err := r.db.Create(&answer).Error; err != nil {
		return nil, fmt.Errorf("failed to create candidate answer: %w", err)
	}
	return &answer, nil
}

func (r *interviewRepository) FindCandidateAnswer(questionID, interviewID uint) (*models.CandidateAnswer, error) {
	var answer models.CandidateAnswer
	err := r.db.Where("question_id = ? AND interview_id = ?", questionID, interviewID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate answer for question %d in interview %d: %w", questionID, interviewID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find candidate answer: %w", err)
	}
	return &answer, nil
}

func (r *interviewRepository) FindCandidateAnswers(interviewID uint) ([]models.CandidateAnswer, error) {
	var answers []models.CandidateAnswer
	err := r.db.Where("interview_id = ?", interviewID).Order("id ASC").Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate answers: %w", err)
	}
	return answers, nil
}

func (r *interviewRepository) AddMessageToCandidateAnswer(messageID, answerID uint) error {
	var answer models.CandidateAnswer
	if err := r.db.Where("id = ?", answerID).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("candidate answer %d: %w", answerID, ErrNotFound)
		}
		return fmt.Errorf("failed to find candidate answer: %w", err)
	}

	answer.MessageIDs = append(answer.MessageIDs, messageID)
	if err := r.db.Save(&answer).Error; err != nil {
		return fmt.Errorf("failed to link message to candidate answer: %w", err)
	}
	return nil
}

func (r *interviewRepository) EvaluateCandidateAnswer(answerID uint, score int, messageToCandidate, messageToHR string, responseTime int) error {
	result := r.db.Model(&models.CandidateAnswer{}).
		Where("id = ?", answerID).
		Updates(map[string]interface{}{
			"score":                score,
			"message_to_candidate": messageToCandidate,
			"message_to_hr":        messageToHR,
			"response_time":        responseTime,
			"updated_at":           time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to evaluate candidate answer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate answer %d: %w", answerID, ErrNotFound)
	}
	return nil
}
