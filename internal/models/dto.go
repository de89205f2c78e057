package models

type CreateVacancyRequest struct {
	Name        string     `json:"name"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
	RedFlags    string     `json:"red_flags"`
	SkillLevel  SkillLevel `json:"skill_level"`
}

type CreateQuestionRequest struct {
	Question          string `json:"question"`
	HintForEvaluation string `json:"hint_for_evaluation"`
	Weight            int    `json:"weight"`
	ResponseTime      int    `json:"response_time"`
}

type GenerateQuestionsRequest struct {
	Count int `json:"count"`
}

type StartInterviewResponse struct {
	MessageToCandidate string `json:"message_to_candidate"`
	TotalQuestion      int    `json:"total_question"`
	QuestionID         uint   `json:"question_id"`
	LLMAudioFilename   string `json:"llm_audio_filename"`
	LLMAudioFid        string `json:"llm_audio_fid"`
}

type SendAnswerResponse struct {
	QuestionID         uint       `json:"question_id"`
	MessageToCandidate string     `json:"message_to_candidate"`
	InterviewResult    *Interview `json:"interview_result,omitempty"`
	LLMAudioFilename   string     `json:"llm_audio_filename"`
	LLMAudioFid        string     `json:"llm_audio_fid"`
}

type InterviewDetailsResponse struct {
	CandidateAnswers  []CandidateAnswer  `json:"candidate_answers"`
	InterviewMessages []InterviewMessage `json:"interview_messages"`
}

// ResumeEvaluationResult is the per-file outcome of a batch resume
// evaluation; rejected resumes carry an empty InterviewID.
type ResumeEvaluationResult struct {
	Filename           string `json:"filename"`
	Accepted           bool   `json:"accepted"`
	InterviewID        uint   `json:"interview_id,omitempty"`
	MessageToCandidate string `json:"message_to_candidate"`
	MessageToHR        string `json:"message_to_hr"`
	Error              string `json:"error,omitempty"`
}

type EvaluateResumesResponse struct {
	Results []ResumeEvaluationResult `json:"results"`
}

type CandidateSearchResult struct {
	InterviewID   uint    `json:"interview_id"`
	VacancyID     uint    `json:"vacancy_id"`
	CandidateName string  `json:"candidate_name"`
	Score         float32 `json:"score"`
	Snippet       string  `json:"snippet"`
}
