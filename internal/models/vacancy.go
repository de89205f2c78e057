package models

import (
	"time"

	"gorm.io/datatypes"
)

type SkillLevel string

const (
	SkillJunior SkillLevel = "junior"
	SkillMiddle SkillLevel = "middle"
	SkillSenior SkillLevel = "senior"
	SkillLead   SkillLevel = "lead"
)

type Vacancy struct {
	ID          uint                        `gorm:"primarykey" json:"id"`
	Name        string                      `gorm:"type:text;not null" json:"name"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	RedFlags    string                      `gorm:"type:text" json:"red_flags"`
	SkillLevel  SkillLevel                  `gorm:"type:text;not null" json:"skill_level"`
	Questions   []VacancyQuestion           `gorm:"foreignKey:VacancyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (Vacancy) TableName() string {
	return "vacancies"
}

// VacancyQuestion rows are ordered by id; creation order defines the
// interview question sequence.
type VacancyQuestion struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	VacancyID         uint      `gorm:"not null;index" json:"vacancy_id"`
	Question          string    `gorm:"type:text;not null" json:"question"`
	HintForEvaluation string    `gorm:"type:text" json:"hint_for_evaluation"`
	Weight            int       `gorm:"not null;default:5" json:"weight"`
	ResponseTime      int       `gorm:"not null;default:60" json:"response_time"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (VacancyQuestion) TableName() string {
	return "vacancy_questions"
}

// InterviewWeights holds the per-vacancy multipliers (0-10) for the six
// finish-time criteria.
type InterviewWeights struct {
	ID                          uint      `gorm:"primarykey" json:"id"`
	VacancyID                   uint      `gorm:"not null;uniqueIndex" json:"vacancy_id"`
	RedFlagWeight               int       `gorm:"not null;default:5" json:"red_flag_weight"`
	HardSkillWeight             int       `gorm:"not null;default:5" json:"hard_skill_weight"`
	SoftSkillWeight             int       `gorm:"not null;default:5" json:"soft_skill_weight"`
	LogicStructureWeight        int       `gorm:"not null;default:5" json:"logic_structure_weight"`
	AccordanceXpResumeWeight    int       `gorm:"not null;default:5" json:"accordance_xp_resume_weight"`
	AccordanceSkillResumeWeight int       `gorm:"not null;default:5" json:"accordance_skill_resume_weight"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

func (InterviewWeights) TableName() string {
	return "interview_weights"
}

// ResumeWeights gates interview creation: both accordance scores from the
// resume evaluation must meet their thresholds.
type ResumeWeights struct {
	ID                                   uint      `gorm:"primarykey" json:"id"`
	VacancyID                            uint      `gorm:"not null;uniqueIndex" json:"vacancy_id"`
	AccordanceXpVacancyScoreThreshold    int       `gorm:"not null;default:3" json:"accordance_xp_vacancy_score_threshold"`
	AccordanceSkillVacancyScoreThreshold int       `gorm:"not null;default:3" json:"accordance_skill_vacancy_score_threshold"`
	RecommendationWeight                 int       `gorm:"not null;default:5" json:"recommendation_weight"`
	PortfolioWeight                      int       `gorm:"not null;default:5" json:"portfolio_weight"`
	CreatedAt                            time.Time `json:"created_at"`
	UpdatedAt                            time.Time `json:"updated_at"`
}

func (ResumeWeights) TableName() string {
	return "resume_weights"
}
