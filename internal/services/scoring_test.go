package services

import (
	"testing"

	"ai-recruiter/internal/models"
)

func uniformWeights(w int) *models.InterviewWeights {
	return &models.InterviewWeights{
		RedFlagWeight:               w,
		HardSkillWeight:             w,
		SoftSkillWeight:             w,
		LogicStructureWeight:        w,
		AccordanceXpResumeWeight:    w,
		AccordanceSkillResumeWeight: w,
	}
}

func TestComputeGeneralScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scores  CriterionScores
		weights *models.InterviewWeights
		want    int
	}{
		{
			// No red flags means the inverted red flag contributes
			// its full weight too, so the sum reaches 150/150.
			name: "perfect candidate uniform weights",
			scores: CriterionScores{
				RedFlag:               0,
				HardSkill:             5,
				SoftSkill:             5,
				LogicStructure:        5,
				AccordanceXpResume:    5,
				AccordanceSkillResume: 5,
			},
			weights: uniformWeights(5),
			want:    10,
		},
		{
			name: "all fives including red flag",
			scores: CriterionScores{
				RedFlag:               5,
				HardSkill:             5,
				SoftSkill:             5,
				LogicStructure:        5,
				AccordanceXpResume:    5,
				AccordanceSkillResume: 5,
			},
			weights: uniformWeights(5),
			want:    8, // 125/150 = 0.8333, floored
		},
		{
			name:    "all zeros",
			scores:  CriterionScores{},
			weights: uniformWeights(5),
			want:    1, // only the inverted red flag contributes: 25/150
		},
		{
			name: "zero total weight yields zero",
			scores: CriterionScores{
				HardSkill: 5,
				SoftSkill: 5,
			},
			weights: uniformWeights(0),
			want:    0,
		},
		{
			name: "severe red flag drags score down",
			scores: CriterionScores{
				RedFlag:               5,
				HardSkill:             4,
				SoftSkill:             4,
				LogicStructure:        4,
				AccordanceXpResume:    4,
				AccordanceSkillResume: 4,
			},
			weights: &models.InterviewWeights{
				RedFlagWeight:               10,
				HardSkillWeight:             5,
				SoftSkillWeight:             5,
				LogicStructureWeight:        5,
				AccordanceXpResumeWeight:    5,
				AccordanceSkillResumeWeight: 5,
			},
			// weighted sum 0 + 5*4*5 = 100, max 5*35 = 175
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeGeneralScore(tt.scores, tt.weights)
			if got != tt.want {
				t.Fatalf("ComputeGeneralScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveGeneralResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  models.GeneralResult
	}{
		{10, models.ResultNext},
		{7, models.ResultNext},
		{6, models.ResultDisputable},
		{5, models.ResultDisputable},
		{4, models.ResultRejected},
		{0, models.ResultRejected},
	}

	for _, tt := range tests {
		if got := ResolveGeneralResult(tt.score); got != tt.want {
			t.Errorf("ResolveGeneralResult(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
