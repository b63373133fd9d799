package competition

import (
	"cmp"
	"math"
	"slices"
)

// Standing is one archer's line in a group's results.
type Standing struct {
	Rank            int    `json:"rank"`
	RegistrationID  int    `json:"registrationID"`
	MemberID        int    `json:"memberID"`
	MemberName      string `json:"memberName"`
	TeamNumber      *int   `json:"teamNumber,omitempty"`
	TargetNumber    *int   `json:"targetNumber,omitempty"`
	TotalScore      int    `json:"totalScore"`
	XCount          int    `json:"xCount"`
	ArrowCount      int    `json:"arrowCount"`
	CompletedRounds int    `json:"completedRounds"`
	IsComplete      bool   `json:"isComplete"`
}

// GroupResult is a group's ranked standings.
type GroupResult struct {
	GroupID   int        `json:"groupID"`
	GroupName string     `json:"groupName"`
	Standings []Standing `json:"standings"`
}

// Rank sorts standings by total score then X count, both descending, keeping
// input order for full ties, and assigns competition ranks (1, 1, 3).
func Rank(standings []Standing) {
	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		return cmp.Compare(b.XCount, a.XCount)
	})
	for i := range standings {
		if i > 0 && standings[i].TotalScore == standings[i-1].TotalScore && standings[i].XCount == standings[i-1].XCount {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
}

// CompletionStats summarises scoring progress over a competition.
type CompletionStats struct {
	TotalParticipants     int     `json:"totalParticipants"`
	CompletedParticipants int     `json:"completedParticipants"`
	CompletionPercentage  float64 `json:"completionPercentage"`
	MissingArrows         int     `json:"missingArrows"`
}

// Stats computes completion stats from participants' scorecards.
func Stats(cards []Scorecard) CompletionStats {
	var s CompletionStats
	s.TotalParticipants = len(cards)
	for _, c := range cards {
		if c.IsComplete {
			s.CompletedParticipants++
		}
		s.MissingArrows += c.MissingArrows
	}
	if s.TotalParticipants > 0 {
		pct := float64(s.CompletedParticipants) / float64(s.TotalParticipants) * 100
		s.CompletionPercentage = math.Round(pct*10) / 10
	}
	return s
}
