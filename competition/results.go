package competition

import (
	"context"

	"github.com/padraicbc/archeryapi/models"
)

// ResultsByGroup ranks each group's archers. Groups nobody registered in
// are left out.
func (s *Service) ResultsByGroup(ctx context.Context, competitionID int) ([]GroupResult, error) {
	c, err := s.loadCompetition(ctx, s.db, competitionID, false)
	if err != nil {
		return nil, err
	}
	groups, err := s.loadGroups(ctx, s.db, competitionID)
	if err != nil {
		return nil, err
	}
	teams, err := s.loadTeams(ctx, s.db, competitionID)
	if err != nil {
		return nil, err
	}
	regs, err := s.loadRegistrations(ctx, s.db, competitionID, true)
	if err != nil {
		return nil, err
	}

	teamByID := make(map[int]*models.CompetitionTeam, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}
	byGroup := make(map[int][]Standing)
	for _, r := range regs {
		sc := NewScorecard(c, r.ArrowScores)
		st := Standing{
			RegistrationID:  r.ID,
			MemberID:        r.MemberID,
			TotalScore:      sc.TotalScore,
			XCount:          sc.XCount,
			ArrowCount:      sc.ArrowCount,
			CompletedRounds: sc.CompletedRounds,
			IsComplete:      sc.IsComplete,
		}
		if r.Member != nil {
			st.MemberName = r.Member.FullName()
		}
		if r.TeamID != nil {
			if t, ok := teamByID[*r.TeamID]; ok {
				st.TeamNumber = &t.TeamNumber
				st.TargetNumber = &t.TargetNumber
			}
		}
		byGroup[r.GroupID] = append(byGroup[r.GroupID], st)
	}

	results := []GroupResult{}
	for _, g := range groups {
		standings := byGroup[g.ID]
		if len(standings) == 0 {
			continue
		}
		Rank(standings)
		results = append(results, GroupResult{GroupID: g.ID, GroupName: g.Name, Standings: standings})
	}
	return results, nil
}

// CompletionStats reports how many archers have a full scorecard.
func (s *Service) CompletionStats(ctx context.Context, competitionID int) (CompletionStats, error) {
	c, err := s.loadCompetition(ctx, s.db, competitionID, false)
	if err != nil {
		return CompletionStats{}, err
	}
	regs, err := s.loadRegistrations(ctx, s.db, competitionID, true)
	if err != nil {
		return CompletionStats{}, err
	}
	cards := make([]Scorecard, len(regs))
	for i, r := range regs {
		cards[i] = NewScorecard(c, r.ArrowScores)
	}
	return Stats(cards), nil
}

// CheckTargetFaceInventory compares target faces in stock with the number
// of teams. The result is advisory and never blocks an operation.
func (s *Service) CheckTargetFaceInventory(ctx context.Context, competitionID int) (InventoryStatus, error) {
	c, err := s.loadCompetition(ctx, s.db, competitionID, false)
	if err != nil {
		return InventoryStatus{}, err
	}
	teams, err := s.loadTeams(ctx, s.db, competitionID)
	if err != nil {
		return InventoryStatus{}, err
	}
	return s.targetFaces(ctx, c, len(teams))
}

func (s *Service) targetFaces(ctx context.Context, c *models.Competition, teams int) (InventoryStatus, error) {
	var items []*models.InventoryItem
	err := s.db.NewSelect().Model(&items).
		Join("JOIN inventory_categories AS ic ON ic.id = ii.category_id").
		Where("LOWER(ic.name) = LOWER(?)", models.TargetFaceCategory).
		Scan(ctx)
	if err != nil {
		return InventoryStatus{}, dbError(err, "inventory")
	}
	return EvaluateTargetFaces(c.TargetSizeCM, teams, items), nil
}
