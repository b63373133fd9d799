package competition

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/models"
)

// TeamAssignment is one generated team and who is on it.
type TeamAssignment struct {
	TeamID          int   `json:"teamID"`
	TeamNumber      int   `json:"teamNumber"`
	TargetNumber    int   `json:"targetNumber"`
	RegistrationIDs []int `json:"registrationIDs"`
}

// GroupTeams lists the teams generated for one group.
type GroupTeams struct {
	GroupID   int              `json:"groupID"`
	GroupName string           `json:"groupName"`
	Teams     []TeamAssignment `json:"teams"`
}

// TeamGeneration is the outcome of GenerateTeams.
type TeamGeneration struct {
	TeamsCreated int             `json:"teamsCreated"`
	Groups       []GroupTeams    `json:"groups"`
	Inventory    InventoryStatus `json:"inventory"`
}

// GenerateTeams discards any existing teams and draws new balanced teams for
// every group with registrants. Target numbers run across the whole
// competition in group order.
func (s *Service) GenerateTeams(ctx context.Context, competitionID int) (*TeamGeneration, error) {
	out := &TeamGeneration{}
	var c *models.Competition

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if c, err = s.loadCompetition(ctx, tx, competitionID, true); err != nil {
			return err
		}
		if err := Require(c, ActionGenerateTeams); err != nil {
			return err
		}
		groups, err := s.loadGroups(ctx, tx, competitionID)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return nil
		}
		groupIDs := make([]int, len(groups))
		for i, g := range groups {
			groupIDs[i] = g.ID
		}

		_, err = tx.NewUpdate().Model((*models.CompetitionRegistration)(nil)).
			Set("team_id = NULL").
			Where("competition_id = ?", competitionID).
			Exec(ctx)
		if err != nil {
			return dbError(err, "registrations")
		}
		_, err = tx.NewDelete().Model((*models.CompetitionTeam)(nil)).
			Where("group_id IN (?)", bun.In(groupIDs)).
			Exec(ctx)
		if err != nil {
			return dbError(err, "teams")
		}

		regs, err := s.loadRegistrations(ctx, tx, competitionID, false)
		if err != nil {
			return err
		}
		byGroup := make(map[int][]*models.CompetitionRegistration)
		for _, r := range regs {
			byGroup[r.GroupID] = append(byGroup[r.GroupID], r)
		}

		target := 0
		for _, g := range groups {
			members := byGroup[g.ID]
			if len(members) == 0 {
				continue
			}
			gt := GroupTeams{GroupID: g.ID, GroupName: g.Name}
			for i, squad := range Partition(members, c.MaxTeamSize, s.shuffle) {
				target++
				team := &models.CompetitionTeam{
					GroupID:      g.ID,
					TeamNumber:   i + 1,
					TargetNumber: target,
					Name:         fmt.Sprintf("Team %d", i+1),
				}
				if _, err := tx.NewInsert().Model(team).Exec(ctx); err != nil {
					return dbError(err, "team")
				}

				ids := make([]int, len(squad))
				for j, r := range squad {
					ids[j] = r.ID
				}
				_, err := tx.NewUpdate().Model((*models.CompetitionRegistration)(nil)).
					Set("team_id = ?", team.ID).
					Where("id IN (?)", bun.In(ids)).
					Exec(ctx)
				if err != nil {
					return dbError(err, "registrations")
				}
				gt.Teams = append(gt.Teams, TeamAssignment{
					TeamID:          team.ID,
					TeamNumber:      team.TeamNumber,
					TargetNumber:    team.TargetNumber,
					RegistrationIDs: ids,
				})
			}
			out.TeamsCreated += len(gt.Teams)
			out.Groups = append(out.Groups, gt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv, err := s.targetFaces(ctx, c, out.TeamsCreated)
	if err != nil {
		return nil, err
	}
	out.Inventory = inv
	s.log.Info("teams generated", zap.Int("competition_id", competitionID), zap.Int("teams", out.TeamsCreated))
	if !inv.HasEnough {
		s.log.Warn("target face shortage",
			zap.Int("competition_id", competitionID), zap.Int("target_size_cm", inv.TargetSizeCM),
			zap.Int("required", inv.Required), zap.Int("available", inv.Available))
	}
	return out, nil
}
