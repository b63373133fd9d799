package competition

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
)

// Competition format defaults and limits.
const (
	DefaultRounds         = 6
	DefaultArrowsPerRound = 6
	DefaultTargetSizeCM   = 122
	DefaultMaxTeamSize    = 4

	maxGroupName   = 100
	maxDescription = 500
	maxNotes       = 500
)

// TargetSizes are the supported target face diameters in cm.
var TargetSizes = []int{20, 40, 60, 80, 122}

// CreateInput describes a new competition. Zero format fields take the defaults.
type CreateInput struct {
	EventID        int `json:"-"`
	NumberOfRounds int `json:"numberOfRounds"`
	ArrowsPerRound int `json:"arrowsPerRound"`
	TargetSizeCM   int `json:"targetSizeCm"`
	MaxTeamSize    int `json:"maxTeamSize"`
	CreatedBy      int `json:"-"`
}

func (in *CreateInput) applyDefaults() {
	if in.NumberOfRounds == 0 {
		in.NumberOfRounds = DefaultRounds
	}
	if in.ArrowsPerRound == 0 {
		in.ArrowsPerRound = DefaultArrowsPerRound
	}
	if in.TargetSizeCM == 0 {
		in.TargetSizeCM = DefaultTargetSizeCM
	}
	if in.MaxTeamSize == 0 {
		in.MaxTeamSize = DefaultMaxTeamSize
	}
}

func (in CreateInput) validate() error {
	switch {
	case in.NumberOfRounds < 1 || in.NumberOfRounds > 20:
		return apperr.Validation("numberOfRounds", "must be between 1 and 20")
	case in.ArrowsPerRound < 3 || in.ArrowsPerRound > 12:
		return apperr.Validation("arrowsPerRound", "must be between 3 and 12")
	case !slices.Contains(TargetSizes, in.TargetSizeCM):
		return apperr.Validation("targetSizeCm", "must be one of %v", TargetSizes)
	case in.MaxTeamSize < 2 || in.MaxTeamSize > 4:
		return apperr.Validation("maxTeamSize", "must be between 2 and 4")
	}
	return nil
}

// CreateCompetition attaches a competition in setup status to an event.
func (s *Service) CreateCompetition(ctx context.Context, in CreateInput) (*models.Competition, error) {
	in.applyDefaults()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var event models.Event
	if err := s.db.NewSelect().Model(&event).Where("?TableAlias.id = ?", in.EventID).Scan(ctx); err != nil {
		return nil, dbError(err, "event")
	}

	exists, err := s.db.NewSelect().Model((*models.Competition)(nil)).Where("event_id = ?", in.EventID).Exists(ctx)
	if err != nil {
		return nil, dbError(err, "competition")
	}
	if exists {
		return nil, apperr.Validation("eventID", "event %d already has a competition", in.EventID)
	}

	c := &models.Competition{
		EventID:        in.EventID,
		NumberOfRounds: in.NumberOfRounds,
		ArrowsPerRound: in.ArrowsPerRound,
		TargetSizeCM:   in.TargetSizeCM,
		MaxTeamSize:    in.MaxTeamSize,
		Status:         models.StatusSetup,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      s.now(),
	}
	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return nil, dbError(err, "competition")
	}
	c.Event = &event

	s.log.Info("competition created",
		zap.Int("competition_id", c.ID), zap.Int("event_id", c.EventID), zap.Int("created_by", c.CreatedBy))
	return c, nil
}

// GroupSummary is a group with its teams and head count.
type GroupSummary struct {
	*models.CompetitionGroup
	Participants int `json:"participants"`
}

// Detail is the full view of one competition.
type Detail struct {
	Competition       *models.Competition `json:"competition"`
	Groups            []GroupSummary      `json:"groups"`
	TotalParticipants int                 `json:"totalParticipants"`
	TotalTeams        int                 `json:"totalTeams"`
	Inventory         InventoryStatus     `json:"inventory"`
}

// GetCompetition returns a competition with its event, groups, teams and
// participant counts.
func (s *Service) GetCompetition(ctx context.Context, id int) (*Detail, error) {
	c := new(models.Competition)
	if err := s.db.NewSelect().Model(c).Relation("Event").Where("c.id = ?", id).Scan(ctx); err != nil {
		return nil, dbError(err, "competition")
	}
	groups, err := s.loadGroups(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.loadTeams(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	regs, err := s.loadRegistrations(ctx, s.db, id, false)
	if err != nil {
		return nil, err
	}

	perGroup := make(map[int]int, len(groups))
	for _, r := range regs {
		perGroup[r.GroupID]++
	}
	d := &Detail{Competition: c, TotalParticipants: len(regs), TotalTeams: len(teams)}
	for _, g := range groups {
		for _, t := range teams {
			if t.GroupID == g.ID {
				g.Teams = append(g.Teams, t)
			}
		}
		d.Groups = append(d.Groups, GroupSummary{CompetitionGroup: g, Participants: perGroup[g.ID]})
	}

	inv, err := s.targetFaces(ctx, c, len(teams))
	if err != nil {
		return nil, err
	}
	d.Inventory = inv
	return d, nil
}

// ListCompetitions returns competitions with their events by event date.
// upcoming limits the list to events from today on.
func (s *Service) ListCompetitions(ctx context.Context, upcoming bool) ([]*models.Competition, error) {
	var out []*models.Competition
	q := s.db.NewSelect().Model(&out).Relation("Event").OrderExpr("event.date ASC, event.start_time ASC, c.id ASC")
	if upcoming {
		q = q.Where("event.date >= ?", s.now().Format("2006-01-02"))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, dbError(err, "competitions")
	}
	return out, nil
}

// DeleteCompetition removes a competition and everything under it.
func (s *Service) DeleteCompetition(ctx context.Context, id int) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.loadCompetition(ctx, tx, id, true); err != nil {
			return err
		}

		regIDs := tx.NewSelect().Model((*models.CompetitionRegistration)(nil)).Column("id").Where("competition_id = ?", id)
		groupIDs := tx.NewSelect().Model((*models.CompetitionGroup)(nil)).Column("id").Where("competition_id = ?", id)

		steps := []*bun.DeleteQuery{
			tx.NewDelete().Model((*models.ArrowScore)(nil)).Where("registration_id IN (?)", regIDs),
			tx.NewDelete().Model((*models.CompetitionRegistration)(nil)).Where("competition_id = ?", id),
			tx.NewDelete().Model((*models.CompetitionTeam)(nil)).Where("group_id IN (?)", groupIDs),
			tx.NewDelete().Model((*models.CompetitionGroup)(nil)).Where("competition_id = ?", id),
			tx.NewDelete().Model((*models.Competition)(nil)).Where("id = ?", id),
		}
		for _, q := range steps {
			if _, err := q.Exec(ctx); err != nil {
				return dbError(err, "competition")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("competition deleted", zap.Int("competition_id", id))
	return nil
}

// GroupInput describes a new group.
type GroupInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MinAge      *int    `json:"minAge"`
	MaxAge      *int    `json:"maxAge"`
}

func (in GroupInput) validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.Name))
	if n < 1 || n > maxGroupName {
		return apperr.Validation("name", "must be 1 to %d characters", maxGroupName)
	}
	if in.MinAge != nil && (*in.MinAge < 1 || *in.MinAge > 100) {
		return apperr.Validation("minAge", "must be between 1 and 100")
	}
	if in.MaxAge != nil && (*in.MaxAge < 1 || *in.MaxAge > 100) {
		return apperr.Validation("maxAge", "must be between 1 and 100")
	}
	if in.MinAge != nil && in.MaxAge != nil && *in.MaxAge <= *in.MinAge {
		return apperr.Validation("maxAge", "must be greater than minAge")
	}
	return nil
}

// AddGroup adds a group while the competition is in setup.
func (s *Service) AddGroup(ctx context.Context, competitionID int, in GroupInput) (*models.CompetitionGroup, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	desc, err := s.cleanText("description", in.Description, maxDescription)
	if err != nil {
		return nil, err
	}
	g := &models.CompetitionGroup{
		CompetitionID: competitionID,
		Name:          strings.TrimSpace(in.Name),
		Description:   desc,
		MinAge:        in.MinAge,
		MaxAge:        in.MaxAge,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		c, err := s.loadCompetition(ctx, tx, competitionID, true)
		if err != nil {
			return err
		}
		if err := Require(c, ActionEditGroups); err != nil {
			return err
		}
		groups, err := s.loadGroups(ctx, tx, competitionID)
		if err != nil {
			return err
		}
		for _, other := range groups {
			if strings.EqualFold(other.Name, g.Name) {
				return apperr.Validation("name", "group %q already exists", g.Name)
			}
		}
		if _, err := tx.NewInsert().Model(g).Exec(ctx); err != nil {
			return dbError(err, "group")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGroup removes a group that has nobody registered in it.
func (s *Service) DeleteGroup(ctx context.Context, groupID int) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		g := new(models.CompetitionGroup)
		if err := tx.NewSelect().Model(g).Where("?TableAlias.id = ?", groupID).Scan(ctx); err != nil {
			return dbError(err, "group")
		}
		c, err := s.loadCompetition(ctx, tx, g.CompetitionID, true)
		if err != nil {
			return err
		}
		if err := Require(c, ActionEditGroups); err != nil {
			return err
		}

		n, err := tx.NewSelect().Model((*models.CompetitionRegistration)(nil)).Where("group_id = ?", groupID).Count(ctx)
		if err != nil {
			return dbError(err, "registrations")
		}
		if n > 0 {
			return apperr.Validation("groupID", "group %q has %d registrations", g.Name, n)
		}

		if _, err := tx.NewDelete().Model((*models.CompetitionTeam)(nil)).Where("group_id = ?", groupID).Exec(ctx); err != nil {
			return dbError(err, "teams")
		}
		if _, err := tx.NewDelete().Model(g).WherePK().Exec(ctx); err != nil {
			return dbError(err, "group")
		}
		return nil
	})
}

// transition moves a competition through action after guard passes.
func (s *Service) transition(ctx context.Context, id int, action Action,
	guard func(ctx context.Context, tx bun.Tx, c *models.Competition) error,
) (*models.Competition, error) {
	var (
		c    *models.Competition
		from models.CompetitionStatus
	)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if c, err = s.loadCompetition(ctx, tx, id, true); err != nil {
			return err
		}
		next, err := Next(c.Status, action)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, tx, c); err != nil {
				return err
			}
		}
		from, c.Status = c.Status, next
		if _, err := tx.NewUpdate().Model(c).Column("status").WherePK().Exec(ctx); err != nil {
			return dbError(err, "competition")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("competition status changed",
		zap.Int("competition_id", id), zap.String("from", string(from)), zap.String("to", string(c.Status)))
	return c, nil
}

// OpenRegistration moves a competition from setup to registration_open.
// At least one group must exist.
func (s *Service) OpenRegistration(ctx context.Context, id int) (*models.Competition, error) {
	return s.transition(ctx, id, ActionOpenRegistration, func(ctx context.Context, tx bun.Tx, c *models.Competition) error {
		n, err := tx.NewSelect().Model((*models.CompetitionGroup)(nil)).Where("competition_id = ?", c.ID).Count(ctx)
		if err != nil {
			return dbError(err, "groups")
		}
		if n == 0 {
			return apperr.State("add at least one group before opening registration")
		}
		return nil
	})
}

// StartCompetition moves a competition to in_progress once teams exist.
func (s *Service) StartCompetition(ctx context.Context, id int) (*models.Competition, error) {
	return s.transition(ctx, id, ActionStart, func(ctx context.Context, tx bun.Tx, c *models.Competition) error {
		teams, err := s.loadTeams(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if len(teams) == 0 {
			return apperr.State("generate teams before starting the competition")
		}
		return nil
	})
}

// RegisterInput enters a member into a competition group.
type RegisterInput struct {
	CompetitionID int     `json:"-"`
	MemberID      int     `json:"memberID"`
	GroupID       int     `json:"groupID"`
	Notes         *string `json:"notes"`
}

// Register adds a member to a group of a competition with open registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.CompetitionRegistration, error) {
	notes, err := s.cleanText("notes", in.Notes, maxNotes)
	if err != nil {
		return nil, err
	}
	reg := &models.CompetitionRegistration{
		CompetitionID: in.CompetitionID,
		MemberID:      in.MemberID,
		GroupID:       in.GroupID,
		Notes:         notes,
		RegisteredAt:  s.now(),
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		c, err := s.loadCompetition(ctx, tx, in.CompetitionID, true)
		if err != nil {
			return err
		}
		if err := Require(c, ActionRegister); err != nil {
			return err
		}
		c.Event = new(models.Event)
		if err := tx.NewSelect().Model(c.Event).Where("?TableAlias.id = ?", c.EventID).Scan(ctx); err != nil {
			return dbError(err, "event")
		}

		m := new(models.Member)
		if err := tx.NewSelect().Model(m).Where("?TableAlias.id = ?", in.MemberID).Scan(ctx); err != nil {
			return dbError(err, "member")
		}
		if !m.IsActive {
			return apperr.Validation("memberID", "member %s is not active", m.Username)
		}

		g := new(models.CompetitionGroup)
		if err := tx.NewSelect().Model(g).Where("?TableAlias.id = ?", in.GroupID).Scan(ctx); err != nil {
			return dbError(err, "group")
		}
		if g.CompetitionID != c.ID {
			return apperr.Validation("groupID", "group %d does not belong to this competition", g.ID)
		}

		taken, err := tx.NewSelect().Model((*models.CompetitionRegistration)(nil)).
			Where("competition_id = ?", c.ID).
			Where("member_id = ?", m.ID).
			Exists(ctx)
		if err != nil {
			return dbError(err, "registration")
		}
		if taken {
			return apperr.Validation("memberID", "%s is already registered", m.FullName())
		}
		if c.Event != nil && c.Event.MaxParticipants != nil {
			n, err := tx.NewSelect().Model((*models.CompetitionRegistration)(nil)).Where("competition_id = ?", c.ID).Count(ctx)
			if err != nil {
				return dbError(err, "registrations")
			}
			if n >= *c.Event.MaxParticipants {
				return apperr.Validation("competitionID", "competition is full (%d participants)", n)
			}
		}

		if _, err := tx.NewInsert().Model(reg).Exec(ctx); err != nil {
			return dbError(err, "registration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member registered",
		zap.Int("competition_id", in.CompetitionID), zap.Int("member_id", in.MemberID),
		zap.Int("group_id", in.GroupID), zap.Int("registration_id", reg.ID))
	return reg, nil
}

// RegistrationFor returns a member's registration in a competition.
func (s *Service) RegistrationFor(ctx context.Context, competitionID, memberID int) (*models.CompetitionRegistration, error) {
	reg := new(models.CompetitionRegistration)
	err := s.db.NewSelect().Model(reg).
		Where("?TableAlias.competition_id = ?", competitionID).
		Where("?TableAlias.member_id = ?", memberID).
		Scan(ctx)
	if err != nil {
		return nil, dbError(err, "registration")
	}
	return reg, nil
}
