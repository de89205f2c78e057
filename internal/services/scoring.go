package services

import (
	"math"

	"ai-recruiter/internal/models"
)

// criterionMax is the top of the 0-5 criterion score scale used at finish.
const criterionMax = 5

// CriterionScores are the six 0-5 scores produced by the interview summary.
type CriterionScores struct {
	RedFlag               int
	HardSkill             int
	SoftSkill             int
	LogicStructure        int
	AccordanceXpResume    int
	AccordanceSkillResume int
}

// ComputeGeneralScore folds the six criterion scores and their per-vacancy
// weights into a single integer on the 0-10 scale. The red flag score is
// inverted first: fewer red flags means a higher contribution.
func ComputeGeneralScore(scores CriterionScores, weights *models.InterviewWeights) int {
	totalWeight := weights.RedFlagWeight +
		weights.HardSkillWeight +
		weights.SoftSkillWeight +
		weights.LogicStructureWeight +
		weights.AccordanceXpResumeWeight +
		weights.AccordanceSkillResumeWeight

	if totalWeight == 0 {
		return 0
	}

	invertedRedFlag := criterionMax - scores.RedFlag

	weightedSum := invertedRedFlag*weights.RedFlagWeight +
		scores.HardSkill*weights.HardSkillWeight +
		scores.SoftSkill*weights.SoftSkillWeight +
		scores.LogicStructure*weights.LogicStructureWeight +
		scores.AccordanceXpResume*weights.AccordanceXpResumeWeight +
		scores.AccordanceSkillResume*weights.AccordanceSkillResumeWeight

	maxPossible := criterionMax * totalWeight

	normalized := float64(weightedSum) / float64(maxPossible)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return int(math.Floor(normalized * 10))
}

// ResolveGeneralResult maps a 0-10 general score onto the final verdict.
func ResolveGeneralResult(generalScore int) models.GeneralResult {
	switch {
	case generalScore >= 7:
		return models.ResultNext
	case generalScore >= 5:
		return models.ResultDisputable
	default:
		return models.ResultRejected
	}
}
