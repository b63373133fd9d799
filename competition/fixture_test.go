package competition

import (
	"context"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/archeryapi/models"
	"github.com/padraicbc/archeryapi/testutil"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	db    *bun.DB
	admin *models.Member
	event *models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bdb := testutil.NewDB(t)
	admin := testutil.Member(t, bdb, "admin", models.RoleAdmin)
	return &fixture{
		db:    bdb,
		admin: admin,
		event: testutil.Event(t, bdb, "Autumn shoot", "2026-11-01", admin.ID),
		svc: NewService(bdb, zaptest.NewLogger(t),
			WithShuffler(NewSeededShuffler(1)),
			WithClock(func() time.Time { return fixedNow })),
	}
}

func (f *fixture) create(t *testing.T, in CreateInput) *models.Competition {
	t.Helper()
	if in.EventID == 0 {
		in.EventID = f.event.ID
	}
	in.CreatedBy = f.admin.ID
	c, err := f.svc.CreateCompetition(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateCompetition: %v", err)
	}
	return c
}

func (f *fixture) addGroups(t *testing.T, c *models.Competition, names ...string) []*models.CompetitionGroup {
	t.Helper()
	out := make([]*models.CompetitionGroup, len(names))
	for i, n := range names {
		g, err := f.svc.AddGroup(context.Background(), c.ID, GroupInput{Name: n})
		if err != nil {
			t.Fatalf("AddGroup(%s): %v", n, err)
		}
		out[i] = g
	}
	return out
}

func (f *fixture) open(t *testing.T, c *models.Competition) {
	t.Helper()
	if _, err := f.svc.OpenRegistration(context.Background(), c.ID); err != nil {
		t.Fatalf("OpenRegistration: %v", err)
	}
}

func (f *fixture) registerN(t *testing.T, c *models.Competition, g *models.CompetitionGroup, prefix string, n int) []*models.CompetitionRegistration {
	t.Helper()
	out := make([]*models.CompetitionRegistration, n)
	for i, m := range testutil.Members(t, f.db, prefix, n) {
		r, err := f.svc.Register(context.Background(), RegisterInput{CompetitionID: c.ID, MemberID: m.ID, GroupID: g.ID})
		if err != nil {
			t.Fatalf("Register(%s): %v", m.Username, err)
		}
		out[i] = r
	}
	return out
}

// running builds an in-progress competition with one group of n archers.
func (f *fixture) running(t *testing.T, rounds, arrowsPerRound, n int) (*models.Competition, []*models.CompetitionRegistration) {
	t.Helper()
	ctx := context.Background()
	c := f.create(t, CreateInput{NumberOfRounds: rounds, ArrowsPerRound: arrowsPerRound})
	g := f.addGroups(t, c, "Open")[0]
	f.open(t, c)
	regs := f.registerN(t, c, g, "archer", n)
	if _, err := f.svc.GenerateTeams(ctx, c.ID); err != nil {
		t.Fatalf("GenerateTeams: %v", err)
	}
	c, err := f.svc.StartCompetition(ctx, c.ID)
	if err != nil {
		t.Fatalf("StartCompetition: %v", err)
	}
	return c, regs
}

func (f *fixture) shootRounds(t *testing.T, c *models.Competition, reg *models.CompetitionRegistration, rounds, points int) {
	t.Helper()
	for r := 1; r <= rounds; r++ {
		entries := make([]ArrowEntry, c.ArrowsPerRound)
		for i := range entries {
			entries[i] = ArrowEntry{Points: points}
		}
		_, err := f.svc.RecordRound(context.Background(), RoundInput{
			RegistrationID: reg.ID, RoundNumber: r, Arrows: entries, RecordedBy: f.admin.ID,
		})
		if err != nil {
			t.Fatalf("RecordRound(%d): %v", r, err)
		}
	}
}

func countArrows(t *testing.T, bdb bun.IDB, registrationID int) int {
	t.Helper()
	n, err := bdb.NewSelect().Model((*models.ArrowScore)(nil)).Where("registration_id = ?", registrationID).Count(context.Background())
	if err != nil {
		t.Fatalf("count arrows: %v", err)
	}
	return n
}
