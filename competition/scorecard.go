package competition

import (
	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
)

// AutoFillNote marks arrows written by CompleteCompetition.
const AutoFillNote = "Auto-filled on competition completion"

// RoundScore is one round's subtotal.
type RoundScore struct {
	Round  int `json:"round"`
	Score  int `json:"score"`
	Arrows int `json:"arrows"`
	Xs     int `json:"xs"`
}

// Scorecard holds everything derived from one registration's arrows.
type Scorecard struct {
	TotalArrows      int          `json:"totalArrows"`
	ArrowCount       int          `json:"arrowCount"`
	TotalScore       int          `json:"totalScore"`
	MaxPossibleScore int          `json:"maxPossibleScore"`
	XCount           int          `json:"xCount"`
	CompletedRounds  int          `json:"completedRounds"`
	CurrentRound     int          `json:"currentRound"`
	IsComplete       bool         `json:"isComplete"`
	MissingArrows    int          `json:"missingArrows"`
	Rounds           []RoundScore `json:"rounds"`
}

// NewScorecard derives a scorecard for arrows shot in competition c.
func NewScorecard(c *models.Competition, arrows []*models.ArrowScore) Scorecard {
	total := c.TotalArrows()
	sc := Scorecard{
		TotalArrows:      total,
		ArrowCount:       len(arrows),
		TotalScore:       TotalScore(arrows),
		MaxPossibleScore: c.MaxPossibleScore(),
		XCount:           XCount(arrows),
		CompletedRounds:  CompletedRounds(c, len(arrows)),
		CurrentRound:     CurrentRound(c, len(arrows)),
		IsComplete:       IsComplete(c, len(arrows)),
		MissingArrows:    max(0, total-len(arrows)),
		Rounds:           make([]RoundScore, c.NumberOfRounds),
	}
	for i := range sc.Rounds {
		sc.Rounds[i].Round = i + 1
	}
	for _, a := range arrows {
		r := c.RoundOf(a.ArrowNumber)
		if r < 1 || r > c.NumberOfRounds {
			continue
		}
		rs := &sc.Rounds[r-1]
		rs.Score += a.Points
		rs.Arrows++
		if a.IsX {
			rs.Xs++
		}
	}
	return sc
}

// TotalScore sums the points of all arrows.
func TotalScore(arrows []*models.ArrowScore) int {
	total := 0
	for _, a := range arrows {
		total += a.Points
	}
	return total
}

// XCount counts arrows marked as an inner ten.
func XCount(arrows []*models.ArrowScore) int {
	n := 0
	for _, a := range arrows {
		if a.IsX {
			n++
		}
	}
	return n
}

// RoundTotal sums arrows whose number falls in round n.
func RoundTotal(c *models.Competition, arrows []*models.ArrowScore, n int) int {
	lo, hi := (n-1)*c.ArrowsPerRound, n*c.ArrowsPerRound
	total := 0
	for _, a := range arrows {
		if a.ArrowNumber > lo && a.ArrowNumber <= hi {
			total += a.Points
		}
	}
	return total
}

func CompletedRounds(c *models.Competition, arrowCount int) int {
	return arrowCount / c.ArrowsPerRound
}

func IsComplete(c *models.Competition, arrowCount int) bool {
	return arrowCount >= c.TotalArrows()
}

// CurrentRound is the round the next arrow goes into. It exceeds
// NumberOfRounds once the card is complete.
func CurrentRound(c *models.Competition, arrowCount int) int {
	return arrowCount/c.ArrowsPerRound + 1
}

// MissingArrowNumbers lists arrow numbers 1..TotalArrows with no score.
func MissingArrowNumbers(c *models.Competition, arrows []*models.ArrowScore) []int {
	have := make(map[int]bool, len(arrows))
	for _, a := range arrows {
		have[a.ArrowNumber] = true
	}
	var missing []int
	for n := 1; n <= c.TotalArrows(); n++ {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// ArrowEntry is one arrow of a submitted round.
type ArrowEntry struct {
	Points int  `json:"points"`
	IsX    bool `json:"isX"`
}

func validatePoints(field string, points int) error {
	if points < 0 || points > models.MaxArrowPoints {
		return apperr.Validation(field, "points must be between 0 and %d, got %d", models.MaxArrowPoints, points)
	}
	return nil
}
