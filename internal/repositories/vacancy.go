package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-recruiter/internal/models"
)

// ErrNotFound marks entity lookups that matched no row; the HTTP layer maps
// it to 404.
var ErrNotFound = errors.New("not found")

type VacancyRepository interface {
	Create(vacancy *models.Vacancy) error
	Update(vacancy *models.Vacancy) error
	Delete(id uint) error
	FindByID(id uint) (*models.Vacancy, error)
	FindAll() ([]models.Vacancy, error)
	CreateQuestion(question *models.VacancyQuestion) error
	UpdateQuestion(question *models.VacancyQuestion) error
	DeleteQuestion(id uint) error
	FindQuestionByID(id uint) (*models.VacancyQuestion, error)
	FindAllQuestions(vacancyID uint) ([]models.VacancyQuestion, error)
	GetInterviewWeights(vacancyID uint) (*models.InterviewWeights, error)
	UpsertInterviewWeights(weights *models.InterviewWeights) error
	GetResumeWeights(vacancyID uint) (*models.ResumeWeights, error)
	UpsertResumeWeights(weights *models.ResumeWeights) error
}

type vacancyRepository struct {
	db *gorm.DB
}

func NewVacancyRepository(db *gorm.DB) VacancyRepository {
	return &vacancyRepository{db: db}
}

func (r *vacancyRepository) Create(vacancy *models.Vacancy) error {
	if err := r.db.Create(vacancy).Error; err != nil {
		return fmt.Errorf("failed to create vacancy: %w", err)
	}
	return nil
}

func (r *vacancyRepository) Update(vacancy *models.Vacancy) error {
	if err := r.db.Save(vacancy).Error; err != nil {
		return fmt.Errorf("failed to update vacancy: %w", err)
	}
	return nil
}

// Delete cascades to questions, weights and interviews of the vacancy.
func (r *vacancyRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var interviewIDs []uint
		if err := tx.Model(&models.Interview{}).Where("vacancy_id = ?", id).Pluck("id", &interviewIDs).Error; err != nil {
			return fmt.Errorf("failed to collect interviews: %w", err)
		}
		if len(interviewIDs) > 0 {
			if err := tx.Where("interview_id IN ?", interviewIDs).Delete(&models.InterviewMessage{}).Error; err != nil {
				return fmt.Errorf("failed to delete interview messages: %w", err)
			}
			if err := tx.Where("interview_id IN ?", interviewIDs).Delete(&models.CandidateAnswer{}).Error; err != nil {
				return fmt.Errorf("failed to delete candidate answers: %w", err)
			}
		}
		for _, m := range []interface{}{
			&models.Interview{}, &models.VacancyQuestion{},
			&models.InterviewWeights{}, &models.ResumeWeights{},
		} {
			if err := tx.Where("vacancy_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete vacancy children: %w", err)
			}
		}
		result := tx.Delete(&models.Vacancy{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete vacancy: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("vacancy %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *vacancyRepository) FindByID(id uint) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	if err := r.db.Where("id = ?", id).First(&vacancy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vacancy %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find vacancy: %w", err)
	}
	return &vacancy, nil
}

func (r *vacancyRepository) FindAll() ([]models.Vacancy, error) {
	var vacancies []models.Vacancy
	if err := r.db.Order("created_at DESC").Find(&vacancies).Error; err != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", err)
	}
	return vacancies, nil
}

func (r *vacancyRepository) CreateQuestion(question *models.VacancyQuestion) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *vacancyRepository) UpdateQuestion(question *models.VacancyQuestion) error {
	if err := r.db.Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (r *vacancyRepository) DeleteQuestion(id uint) error {
	result := r.db.Delete(&models.VacancyQuestion{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *vacancyRepository) FindQuestionByID(id uint) (*models.VacancyQuestion, error) {
	var question models.VacancyQuestion
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

// FindAllQuestions returns questions in creation order, which is the
// interview question sequence.
func (r *vacancyRepository) FindAllQuestions(vacancyID uint) ([]models.VacancyQuestion, error) {
	var questions []models.VacancyQuestion
	if err := r.db.Where("vacancy_id = ?", vacancyID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// GetInterviewWeights falls back to the default weights when the vacancy
// never configured any.
func (r *vacancyRepository) GetInterviewWeights(vacancyID uint) (*models.InterviewWeights, error) {
	var weights models.InterviewWeights
	if err := r.db.Where("vacancy_id = ?", vacancyID).First(&weights).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultInterviewWeights(vacancyID), nil
		}
		return nil, fmt.Errorf("failed to find interview weights: %w", err)
	}
	return &weights, nil
}

func defaultInterviewWeights(vacancyID uint) *models.InterviewWeights {
	return &models.InterviewWeights{
		VacancyID:                   vacancyID,
		RedFlagWeight:               5,
		HardSkillWeight:             5,
		SoftSkillWeight:             5,
		LogicStructureWeight:        5,
		AccordanceXpResumeWeight:    5,
		AccordanceSkillResumeWeight: 5,
	}
}

func (r *vacancyRepository) UpsertInterviewWeights(weights *models.InterviewWeights) error {
	var existing models.InterviewWeights
	err := r.db.Where("vacancy_id = ?", weights.VacancyID).First(&existing).Error
	if err == nil {
		weights.ID = existing.ID
		weights.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up interview weights: %w", err)
	}
	if err := r.db.Save(weights).Error; err != nil {
		return fmt.Errorf("failed to save interview weights: %w", err)
	}
	return nil
}

// GetResumeWeights falls back to the default thresholds when the vacancy
// never configured any.
func (r *vacancyRepository) GetResumeWeights(vacancyID uint) (*models.ResumeWeights, error) {
	var weights models.ResumeWeights
	if err := r.db.Where("vacancy_id = ?", vacancyID).First(&weights).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultResumeWeights(vacancyID), nil
		}
		return nil, fmt.Errorf("failed to find resume weights: %w", err)
	}
	return &weights, nil
}

func defaultResumeWeights(vacancyID uint) *models.ResumeWeights {
	return &models.ResumeWeights{
		VacancyID:                            vacancyID,
		AccordanceXpVacancyScoreThreshold:    3,
		AccordanceSkillVacancyScoreThreshold: 3,
		RecommendationWeight:                 5,
		PortfolioWeight:                      5,
	}
}

func (r *vacancyRepository) UpsertResumeWeights(weights *models.ResumeWeights) error {
	var existing models.ResumeWeights
	err := r.db.Where("vacancy_id = ?", weights.VacancyID).First(&existing).Error
	if err == nil {
		weights.ID = existing.ID
		weights.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up resume weights: %w", err)
	}
	if err := r.db.Save(weights).Error; err != nil {
		return fmt.Errorf("failed to save resume weights: %w", err)
	}
	return nil
}
