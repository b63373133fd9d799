package competition

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
)

// ArrowInput scores or corrects one arrow.
type ArrowInput struct {
	RegistrationID int  `json:"-"`
	RoundNumber    int  `json:"roundNumber"`
	ArrowNumber    int  `json:"arrowNumber"`
	Points         int  `json:"points"`
	IsX            bool `json:"isX"`
	RecordedBy     int  `json:"-"`
}

// RoundInput scores a whole round at once.
type RoundInput struct {
	RegistrationID int          `json:"-"`
	RoundNumber    int          `json:"roundNumber"`
	Arrows         []ArrowEntry `json:"arrows"`
	RecordedBy     int          `json:"-"`
}

// Card is one registration's scorecard with its arrows.
type Card struct {
	RegistrationID int                  `json:"registrationID"`
	CompetitionID  int                  `json:"competitionID"`
	MemberID       int                  `json:"memberID"`
	MemberName     string               `json:"memberName"`
	GroupID        int                  `json:"groupID"`
	TeamID         *int                 `json:"teamID,omitempty"`
	Scorecard      Scorecard            `json:"scorecard"`
	Arrows         []*models.ArrowScore `json:"arrows"`
}

func newCard(c *models.Competition, r *models.CompetitionRegistration) Card {
	card := Card{
		RegistrationID: r.ID,
		CompetitionID:  r.CompetitionID,
		MemberID:       r.MemberID,
		GroupID:        r.GroupID,
		TeamID:         r.TeamID,
		Scorecard:      NewScorecard(c, r.ArrowScores),
		Arrows:         r.ArrowScores,
	}
	if r.Member != nil {
		card.MemberName = r.Member.FullName()
	}
	if card.Arrows == nil {
		card.Arrows = []*models.ArrowScore{}
	}
	return card
}

// scoringTarget locks the competition of a registration, checks that scores
// may be recorded and then loads the registration with its arrows. Arrows are
// read after the lock so concurrent writers see each other's rows.
func (s *Service) scoringTarget(ctx context.Context, tx bun.Tx, registrationID int) (*models.CompetitionRegistration, *models.Competition, error) {
	var competitionID int
	err := tx.NewSelect().Model((*models.CompetitionRegistration)(nil)).
		Column("competition_id").
		Where("id = ?", registrationID).
		Scan(ctx, &competitionID)
	if err != nil {
		return nil, nil, dbError(err, "registration")
	}
	c, err := s.loadCompetition(ctx, tx, competitionID, true)
	if err != nil {
		return nil, nil, err
	}
	if err := Require(c, ActionScore); err != nil {
		return nil, nil, err
	}
	reg, err := s.loadRegistration(ctx, tx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	return reg, c, nil
}

// RecordArrow writes one arrow. A new arrow must fall in the archer's
// current round; an arrow that is already scored may be corrected at any
// time while the competition runs.
func (s *Service) RecordArrow(ctx context.Context, in ArrowInput) (*Card, error) {
	if err := validatePoints("points", in.Points); err != nil {
		return nil, err
	}

	var card Card
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reg, c, err := s.scoringTarget(ctx, tx, in.RegistrationID)
		if err != nil {
			return err
		}

		total := c.TotalArrows()
		if in.ArrowNumber < 1 || in.ArrowNumber > total {
			return apperr.Validation("arrowNumber", "must be between 1 and %d", total)
		}
		if in.RoundNumber < 1 || in.RoundNumber > c.NumberOfRounds {
			return apperr.Validation("roundNumber", "must be between 1 and %d", c.NumberOfRounds)
		}
		if r := c.RoundOf(in.ArrowNumber); r != in.RoundNumber {
			return apperr.Validation("roundNumber", "arrow %d belongs to round %d", in.ArrowNumber, r)
		}

		correcting := false
		for _, a := range reg.ArrowScores {
			if a.ArrowNumber == in.ArrowNumber {
				correcting = true
				break
			}
		}
		if !correcting {
			count := len(reg.ArrowScores)
			if count >= total {
				return apperr.Validation("arrowNumber", "all %d arrows are already recorded", total)
			}
			if cur := CurrentRound(c, count); in.RoundNumber != cur {
				return apperr.Validation("roundNumber", "archer is on round %d", cur)
			}
		}

		arrow := &models.ArrowScore{
			RegistrationID: reg.ID,
			ArrowNumber:    in.ArrowNumber,
			RoundNumber:    in.RoundNumber,
			Points:         in.Points,
			IsX:            in.IsX,
			RecordedBy:     in.RecordedBy,
			RecordedAt:     s.now(),
		}
		_, err = tx.NewInsert().Model(arrow).
			On("CONFLICT (registration_id, arrow_number) DO UPDATE").
			Set("points = EXCLUDED.points").
			Set("is_x = EXCLUDED.is_x").
			Set("auto_filled = EXCLUDED.auto_filled").
			Set("notes = EXCLUDED.notes").
			Set("recorded_by = EXCLUDED.recorded_by").
			Set("recorded_at = EXCLUDED.recorded_at").
			Exec(ctx)
		if err != nil {
			return dbError(err, "arrow score")
		}

		if reg, err = s.loadRegistration(ctx, tx, reg.ID); err != nil {
			return err
		}
		card = newCard(c, reg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("arrow recorded",
		zap.Int("registration_id", in.RegistrationID), zap.Int("arrow", in.ArrowNumber),
		zap.Int("points", in.Points), zap.Int("recorded_by", in.RecordedBy))
	return &card, nil
}

// RecordRound writes every arrow of the archer's current round or nothing.
func (s *Service) RecordRound(ctx context.Context, in RoundInput) (*Card, error) {
	for i, e := range in.Arrows {
		if err := validatePoints(fmt.Sprintf("arrows[%d].points", i), e.Points); err != nil {
			return nil, err
		}
	}

	var card Card
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reg, c, err := s.scoringTarget(ctx, tx, in.RegistrationID)
		if err != nil {
			return err
		}
		if len(in.Arrows) != c.ArrowsPerRound {
			return apperr.Validation("arrows", "a round has %d arrows, got %d", c.ArrowsPerRound, len(in.Arrows))
		}

		count := len(reg.ArrowScores)
		if count >= c.TotalArrows() {
			return apperr.Validation("roundNumber", "all %d rounds are already recorded", c.NumberOfRounds)
		}
		if cur := CurrentRound(c, count); in.RoundNumber != cur {
			return apperr.Validation("roundNumber", "archer is on round %d", cur)
		}
		first := (in.RoundNumber-1)*c.ArrowsPerRound + 1
		for _, a := range reg.ArrowScores {
			if a.ArrowNumber >= first {
				return apperr.Validation("roundNumber", "round %d is partly scored, correct single arrows instead", in.RoundNumber)
			}
		}

		now := s.now()
		arrows := make([]*models.ArrowScore, len(in.Arrows))
		for i, e := range in.Arrows {
			arrows[i] = &models.ArrowScore{
				RegistrationID: reg.ID,
				ArrowNumber:    first + i,
				RoundNumber:    in.RoundNumber,
				Points:         e.Points,
				IsX:            e.IsX,
				RecordedBy:     in.RecordedBy,
				RecordedAt:     now,
			}
		}
		if _, err := tx.NewInsert().Model(&arrows).Exec(ctx); err != nil {
			return dbError(err, "round")
		}

		reg.ArrowScores = append(reg.ArrowScores, arrows...)
		card = newCard(c, reg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("round recorded",
		zap.Int("registration_id", in.RegistrationID), zap.Int("round", in.RoundNumber),
		zap.Int("recorded_by", in.RecordedBy))
	return &card, nil
}

// Completion is the outcome of CompleteCompetition.
type Completion struct {
	Competition  *models.Competition `json:"competition"`
	FilledArrows int                 `json:"filledArrows"`
}

// CompleteCompetition pads every unfinished scorecard with zero-point
// auto-filled arrows and marks the competition completed.
func (s *Service) CompleteCompetition(ctx context.Context, id, recordedBy int) (*Completion, error) {
	out := &Completion{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		c, err := s.loadCompetition(ctx, tx, id, true)
		if err != nil {
			return err
		}
		next, err := Next(c.Status, ActionComplete)
		if err != nil {
			return err
		}
		regs, err := s.loadRegistrations(ctx, tx, id, true)
		if err != nil {
			return err
		}

		now := s.now()
		note := AutoFillNote
		var fill []*models.ArrowScore
		for _, r := range regs {
			for _, n := range MissingArrowNumbers(c, r.ArrowScores) {
				fill = append(fill, &models.ArrowScore{
					RegistrationID: r.ID,
					ArrowNumber:    n,
					RoundNumber:    c.RoundOf(n),
					AutoFilled:     true,
					Notes:          &note,
					RecordedBy:     recordedBy,
					RecordedAt:     now,
				})
			}
		}
		if len(fill) > 0 {
			if _, err := tx.NewInsert().Model(&fill).Exec(ctx); err != nil {
				return dbError(err, "arrow scores")
			}
		}

		c.Status = next
		if _, err := tx.NewUpdate().Model(c).Column("status").WherePK().Exec(ctx); err != nil {
			return dbError(err, "competition")
		}
		out.Competition = c
		out.FilledArrows = len(fill)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("competition completed",
		zap.Int("competition_id", id), zap.Int("auto_filled_arrows", out.FilledArrows))
	return out, nil
}

// Scorecard returns one registration's card.
func (s *Service) Scorecard(ctx context.Context, registrationID int) (*Card, error) {
	reg, err := s.loadRegistration(ctx, s.db, registrationID)
	if err != nil {
		return nil, err
	}
	c, err := s.loadCompetition(ctx, s.db, reg.CompetitionID, false)
	if err != nil {
		return nil, err
	}
	card := newCard(c, reg)
	return &card, nil
}

// Overview is every scorecard of a competition plus progress stats.
type Overview struct {
	Competition *models.Competition `json:"competition"`
	Cards       []Card              `json:"cards"`
	Stats       CompletionStats     `json:"stats"`
}

// ScoringOverview returns all scorecards of a competition in registration order.
func (s *Service) ScoringOverview(ctx context.Context, competitionID int) (*Overview, error) {
	c, err := s.loadCompetition(ctx, s.db, competitionID, false)
	if err != nil {
		return nil, err
	}
	regs, err := s.loadRegistrations(ctx, s.db, competitionID, true)
	if err != nil {
		return nil, err
	}
	o := &Overview{Competition: c, Cards: make([]Card, 0, len(regs))}
	scs := make([]Scorecard, 0, len(regs))
	for _, r := range regs {
		card := newCard(c, r)
		o.Cards = append(o.Cards, card)
		scs = append(scs, card.Scorecard)
	}
	o.Stats = Stats(scs)
	return o, nil
}
