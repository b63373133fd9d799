package competition

import "testing"

func TestRankOrdersByScoreThenX(t *testing.T) {
	standings := []Standing{
		{RegistrationID: 1, TotalScore: 80, XCount: 1},
		{RegistrationID: 2, TotalScore: 95, XCount: 0},
		{RegistrationID: 3, TotalScore: 80, XCount: 3},
		{RegistrationID: 4, TotalScore: 80, XCount: 1},
		{RegistrationID: 5, TotalScore: 12, XCount: 0},
	}
	Rank(standings)

	wantIDs := []int{2, 3, 1, 4, 5}
	wantRanks := []int{1, 2, 3, 3, 5}
	for i, s := range standings {
		if s.RegistrationID != wantIDs[i] || s.Rank != wantRanks[i] {
			t.Errorf("position %d: got reg %d rank %d, want reg %d rank %d",
				i, s.RegistrationID, s.Rank, wantIDs[i], wantRanks[i])
		}
	}
	for i := 1; i < len(standings); i++ {
		if standings[i].TotalScore > standings[i-1].TotalScore {
			t.Fatalf("scores not non-increasing at %d", i)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	Rank(nil)
}

func TestStats(t *testing.T) {
	tests := []struct {
		name  string
		cards []Scorecard
		want  CompletionStats
	}{
		{"no participants", nil, CompletionStats{}},
		{
			"one of three complete",
			[]Scorecard{{IsComplete: true}, {MissingArrows: 6}, {MissingArrows: 2}},
			CompletionStats{TotalParticipants: 3, CompletedParticipants: 1, CompletionPercentage: 33.3, MissingArrows: 8},
		},
		{
			"all complete",
			[]Scorecard{{IsComplete: true}, {IsComplete: true}},
			CompletionStats{TotalParticipants: 2, CompletedParticipants: 2, CompletionPercentage: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stats(tt.cards); got != tt.want {
				t.Errorf("Stats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
