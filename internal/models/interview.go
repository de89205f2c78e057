package models

import (
	"time"

	"gorm.io/datatypes"
)

type GeneralResult string

const (
	ResultInProcess  GeneralResult = "IN_PROCESS"
	ResultNext       GeneralResult = "NEXT"
	ResultDisputable GeneralResult = "DISPUTABLE"
	ResultRejected   GeneralResult = "REJECTED"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// UnknownField is stored for candidate identity fields the LLM could not
// extract from the resume.
const UnknownField = "Unknown"

type Interview struct {
	ID        uint `gorm:"primarykey" json:"id"`
	VacancyID uint `gorm:"not null;index" json:"vacancy_id"`

	CandidateName     string `gorm:"type:text;not null" json:"candidate_name"`
	CandidateEmail    string `gorm:"type:text;not null" json:"candidate_email"`
	CandidatePhone    string `gorm:"type:text;not null" json:"candidate_phone"`
	CandidateTelegram string `gorm:"type:text;not null" json:"candidate_telegram"`

	ResumeFid      string `gorm:"type:text;not null" json:"resume_fid"`
	ResumeFilename string `gorm:"type:text;not null" json:"resume_filename"`

	// Resume-stage scores (0-5), written once at creation.
	AccordanceXpVacancyScore    int `gorm:"not null;default:0" json:"accordance_xp_vacancy_score"`
	AccordanceSkillVacancyScore int `gorm:"not null;default:0" json:"accordance_skill_vacancy_score"`

	// Interview-stage criterion scores (0-5), written once at finish.
	RedFlagScore               int `gorm:"not null;default:0" json:"red_flag_score"`
	HardSkillScore             int `gorm:"not null;default:0" json:"hard_skill_score"`
	SoftSkillScore             int `gorm:"not null;default:0" json:"soft_skill_score"`
	LogicStructureScore        int `gorm:"not null;default:0" json:"logic_structure_score"`
	AccordanceXpResumeScore    int `gorm:"not null;default:0" json:"accordance_xp_resume_score"`
	AccordanceSkillResumeScore int `gorm:"not null;default:0" json:"accordance_skill_resume_score"`

	StrongAreas    string                      `gorm:"type:text" json:"strong_areas"`
	WeakAreas      string                      `gorm:"type:text" json:"weak_areas"`
	ApprovedSkills datatypes.JSONSlice[string] `json:"approved_skills"`

	GeneralScore  int           `gorm:"not null;default:0" json:"general_score"`
	GeneralResult GeneralResult `gorm:"type:text;not null;default:'IN_PROCESS'" json:"general_result"`

	MessageToCandidate string `gorm:"type:text" json:"message_to_candidate"`
	MessageToHR        string `gorm:"type:text" json:"message_to_hr"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Interview) TableName() string {
	return "interviews"
}

// CandidateAnswer is the evaluation unit for one question within one
// interview; it may span several chat turns before it is closed by one
// evaluation call.
type CandidateAnswer struct {
	ID          uint `gorm:"primarykey" json:"id"`
	QuestionID  uint `gorm:"not null;index" json:"question_id"`
	InterviewID uint `gorm:"not null;index" json:"interview_id"`

	ResponseTime int                       `gorm:"not null;default:0" json:"response_time"`
	MessageIDs   datatypes.JSONSlice[uint] `json:"message_ids"`

	MessageToCandidate string `gorm:"type:text" json:"message_to_candidate"`
	MessageToHR        string `gorm:"type:text" json:"message_to_hr"`
	Score              int    `gorm:"not null;default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CandidateAnswer) TableName() string {
	return "candidate_answers"
}

// InterviewMessage is one turn of the append-only chat transcript.
// Ordering by created_at (and id as a tie-break) is the conversation order.
type InterviewMessage struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	InterviewID uint        `gorm:"not null;index" json:"interview_id"`
	QuestionID  uint        `gorm:"not null;index" json:"question_id"`
	AudioName   string      `gorm:"type:text" json:"audio_name"`
	AudioFid    string      `gorm:"type:text" json:"audio_fid"`
	Role        MessageRole `gorm:"type:text;not null" json:"role"`
	Text        string      `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (InterviewMessage) TableName() string {
	return "interview_messages"
}
