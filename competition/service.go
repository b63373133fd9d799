package competition

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
)

// Service runs competition operations against the store. Every multi-row
// mutation happens in a single transaction.
type Service struct {
	db       *bun.DB
	log      *zap.Logger
	shuffle  Shuffler
	now      func() time.Time
	sanitize *bluemonday.Policy
}

// Option configures a Service.
type Option func(*Service)

// WithShuffler sets the team shuffle source. Tests pass NewSeededShuffler.
func WithShuffler(s Shuffler) Option {
	return func(svc *Service) { svc.shuffle = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService returns a Service using fresh randomness for team draws.
func NewService(db *bun.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		log:      log,
		shuffle:  rand.Shuffle,
		now:      time.Now,
		sanitize: bluemonday.StrictPolicy(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// cleanText strips markup from free text and returns nil when nothing is left.
func (s *Service) cleanText(field string, in *string, maxLen int) (*string, error) {
	if in == nil {
		return nil, nil
	}
	out := strings.TrimSpace(s.sanitize.Sanitize(*in))
	if out == "" {
		return nil, nil
	}
	if len([]rune(out)) > maxLen {
		return nil, apperr.Validation(field, "must be at most %d characters", maxLen)
	}
	return &out, nil
}

// forUpdate locks the selected rows on PostgreSQL. SQLite serialises writers
// already and has no row locks.
func forUpdate(db bun.IDB, q *bun.SelectQuery) *bun.SelectQuery {
	if db.Dialect().Name() == dialect.PG {
		return q.For("UPDATE")
	}
	return q
}

func (s *Service) loadCompetition(ctx context.Context, db bun.IDB, id int, lock bool) (*models.Competition, error) {
	c := new(models.Competition)
	q := db.NewSelect().Model(c).Where("?TableAlias.id = ?", id)
	if lock {
		q = forUpdate(db, q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, dbError(err, "competition")
	}
	return c, nil
}

func (s *Service) loadGroups(ctx context.Context, db bun.IDB, competitionID int) ([]*models.CompetitionGroup, error) {
	var groups []*models.CompetitionGroup
	err := db.NewSelect().Model(&groups).
		Where("?TableAlias.competition_id = ?", competitionID).
		Order("cg.id").
		Scan(ctx)
	if err != nil {
		return nil, dbError(err, "groups")
	}
	return groups, nil
}

func (s *Service) loadTeams(ctx context.Context, db bun.IDB, competitionID int) ([]*models.CompetitionTeam, error) {
	var teams []*models.CompetitionTeam
	err := db.NewSelect().Model(&teams).
		Join("JOIN competition_groups AS cg ON cg.id = ct.group_id").
		Where("cg.competition_id = ?", competitionID).
		Order("ct.group_id", "ct.team_number").
		Scan(ctx)
	if err != nil {
		return nil, dbError(err, "teams")
	}
	return teams, nil
}

// loadRegistrations returns a competition's registrations in registration
// order with their member and, if arrows is set, their arrows.
func (s *Service) loadRegistrations(ctx context.Context, db bun.IDB, competitionID int, arrows bool) ([]*models.CompetitionRegistration, error) {
	var regs []*models.CompetitionRegistration
	q := db.NewSelect().Model(&regs).
		Relation("Member").
		Where("cr.competition_id = ?", competitionID).
		Order("cr.id")
	if arrows {
		q = q.Relation("ArrowScores", orderArrows)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, dbError(err, "registrations")
	}
	return regs, nil
}

func (s *Service) loadRegistration(ctx context.Context, db bun.IDB, id int) (*models.CompetitionRegistration, error) {
	reg := new(models.CompetitionRegistration)
	err := db.NewSelect().Model(reg).
		Relation("Member").
		Relation("ArrowScores", orderArrows).
		Where("cr.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, dbError(err, "registration")
	}
	return reg, nil
}

func orderArrows(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("arrow_number")
}

// dbError classifies a store error; what names the record for messages.
func dbError(err error, what string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("%s not found", what)
	case isUniqueViolation(err):
		return apperr.Conflict(err, "%s was changed by another request, retry", what)
	default:
		return apperr.Internal(err, "loading or saving "+what)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	// sqlite, used by tests
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
