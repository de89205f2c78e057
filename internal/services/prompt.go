package services

import (
	"fmt"
	"strings"

	"ai-recruiter/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildHelloPrompt creates the system prompt for the interview greeting.
func (pb *PromptBuilder) BuildHelloPrompt(vacancy *models.Vacancy, questions []models.VacancyQuestion, candidateName string) string {
	return fmt.Sprintf(`You are an AI interviewer conducting a voice interview for the following vacancy.

VACANCY:
Name: %s
Level: %s
Description: %s
Skills/tags: %s

INTERVIEW QUESTION PLAN (in order):
%s

CANDIDATE NAME: %s

Your task: greet the candidate by name, briefly explain how the interview
will go (%d questions, spoken answers), and ask the first question from the
plan. Be warm but professional. Speak in the second person.

Return your response in the following JSON format:
{
  "message_to_candidate": "<your greeting including the first question>"
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
		strings.Join(vacancy.Tags, ", "),
		formatQuestionList(questions),
		candidateName,
		len(questions),
	)
}

// BuildManagementPrompt creates the system prompt that classifies the
// candidate's latest answer into a state machine action.
func (pb *PromptBuilder) BuildManagementPrompt(vacancy *models.Vacancy, questions []models.VacancyQuestion, currentOrder int) string {
	return fmt.Sprintf(`You are an AI interviewer running a structured interview for this vacancy.

VACANCY:
Name: %s
Level: %s
Description: %s
Red flags to watch for: %s

INTERVIEW QUESTION PLAN (in order):
%s

The interview is currently on question %d of %d.

Based on the conversation so far, decide what to do next:
- "delve_into_question" - the answer is incomplete or vague; ask a follow-up
  on the SAME question.
- "next_question" - the answer is sufficient; move on and ask the next
  question from the plan.
- "finish_interview" - all questions are covered, OR the candidate shows a
  serious red flag or refuses to engage; wrap up the interview politely.

Return your response in the following JSON format:
{
  "action": "<delve_into_question | next_question | finish_interview>",
  "message_to_candidate": "<your next spoken message to the candidate>"
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
		vacancy.RedFlags,
		formatQuestionList(questions),
		currentOrder,
		len(questions),
	)
}

// BuildEvaluationPrompt creates the system prompt scoring one answered
// question against its rubric hint.
func (pb *PromptBuilder) BuildEvaluationPrompt(vacancy *models.Vacancy, question *models.VacancyQuestion) string {
	return fmt.Sprintf(`You are an expert technical interviewer evaluating one answered interview question.

VACANCY:
Name: %s
Level: %s

QUESTION:
%s

EVALUATION RUBRIC:
%s

The conversation you receive contains only the exchange for this question.
Score how well the candidate answered it, on an integer scale from 0 (no
usable answer) to 10 (excellent, complete answer at the expected level).

Return your response in the following JSON format:
{
  "score": <0-10>,
  "message_to_candidate": "<one or two encouraging sentences of feedback>",
  "message_to_hr": "<frank assessment of this answer for the hiring team>"
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		question.Question,
		question.HintForEvaluation,
	)
}

// BuildSummaryPrompt creates the system prompt for the finishing summary
// that produces the six criterion scores.
func (pb *PromptBuilder) BuildSummaryPrompt(vacancy *models.Vacancy, questions []models.VacancyQuestion) string {
	return fmt.Sprintf(`You are an expert hiring committee member summarizing a completed interview.

VACANCY:
Name: %s
Level: %s
Description: %s
Red flags to watch for: %s

INTERVIEW QUESTION PLAN:
%s

The conversation you receive is the full interview transcript. Evaluate the
candidate on each criterion with an integer score from 0 to 5:
- red_flag_score: how strongly red flags showed up (0 = none, 5 = severe)
- hard_skill_score: technical depth for this vacancy
- soft_skill_score: communication and collaboration signals
- logic_structure_score: clarity and structure of reasoning
- accordance_xp_resume_score: how well spoken experience matches the resume
- accordance_skill_resume_score: how well demonstrated skills match the resume

Return your response in the following JSON format:
{
  "red_flag_score": <0-5>,
  "hard_skill_score": <0-5>,
  "soft_skill_score": <0-5>,
  "logic_structure_score": <0-5>,
  "accordance_xp_resume_score": <0-5>,
  "accordance_skill_resume_score": <0-5>,
  "strong_areas": "<candidate's strongest areas>",
  "weak_areas": "<candidate's weakest areas>",
  "approved_skills": ["<skills the candidate convincingly demonstrated>"],
  "message_to_candidate": "<closing message thanking the candidate>",
  "message_to_hr": "<hiring recommendation with reasoning>"
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
		vacancy.RedFlags,
		formatQuestionList(questions),
	)
}

// BuildResumeEvaluationPrompt creates the system prompt for the single-shot
// resume screening call.
func (pb *PromptBuilder) BuildResumeEvaluationPrompt(vacancy *models.Vacancy) string {
	return fmt.Sprintf(`You are an expert HR recruiter screening a resume for this vacancy.

VACANCY:
Name: %s
Level: %s
Description: %s
Skills/tags: %s
Red flags (disqualifiers): %s

The user message contains the candidate's resume. Extract the candidate's
identity and score the resume against the vacancy. Use the string "Unknown"
for any identity field you cannot find. Scores are integers from 0 to 5.

Return your response in the following JSON format:
{
  "candidate_name": "<full name or Unknown>",
  "candidate_email": "<email or Unknown>",
  "candidate_phone": "<phone or Unknown>",
  "candidate_telegram": "<telegram login or Unknown>",
  "accordance_xp_vacancy_score": <0-5, experience match>,
  "accordance_skill_vacancy_score": <0-5, skill match>,
  "message_to_candidate": "<short message for the candidate>",
  "message_to_hr": "<screening summary for the hiring team>"
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
		strings.Join(vacancy.Tags, ", "),
		vacancy.RedFlags,
	)
}

// BuildQuestionGenerationPrompt creates the system prompt that drafts
// interview questions for a vacancy.
func (pb *PromptBuilder) BuildQuestionGenerationPrompt(vacancy *models.Vacancy, count int) string {
	return fmt.Sprintf(`You are an expert at designing technical interview questions.

VACANCY:
Name: %s
Level: %s
Description: %s
Skills/tags: %s

Generate exactly %d interview questions matching the %s level. For each
question include a rubric hint describing what a strong answer contains, an
importance weight from 1 to 10, and a response time in seconds.

Return your response in the following JSON format:
{
  "questions": [
    {
      "question": "<question text>",
      "hint_for_evaluation": "<what a strong answer contains>",
      "weight": <1-10>,
      "response_time": <seconds, 60-300>
    }
  ]
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
		strings.Join(vacancy.Tags, ", "),
		count,
		vacancy.SkillLevel,
	)
}

// BuildTagGenerationPrompt creates the system prompt that proposes skill
// tags for a vacancy description.
func (pb *PromptBuilder) BuildTagGenerationPrompt(vacancy *models.Vacancy) string {
	return fmt.Sprintf(`You are an expert at classifying job postings.

VACANCY:
Name: %s
Level: %s
Description: %s

Propose 5-15 short skill tags (technologies, practices, domains) that best
describe this vacancy. Lowercase, no duplicates.

Return your response in the following JSON format:
{
  "tags": ["<tag>", "<tag>"]
}

Reply with ONLY the JSON object, no markdown, no extra text.`,
		vacancy.Name,
		vacancy.SkillLevel,
		vacancy.Description,
	)
}

func formatQuestionList(questions []models.VacancyQuestion) string {
	var parts []string
	for i, q := range questions {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, q.Question))
	}
	return strings.Join(parts, "\n")
}
