package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/padraicbc/archeryapi/config"
	"github.com/padraicbc/archeryapi/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

type tableSpec struct {
	model       interface{}
	foreignKeys []string
}

type indexSpec struct {
	model   interface{}
	name    string
	columns []string
}

// CreateTables creates all tables in dependency order. Child rows of a
// competition are removed by ON DELETE CASCADE where the database enforces it.
func CreateTables(ctx context.Context, db bun.IDB) error {
	tables := []tableSpec{
		{model: (*models.Member)(nil)},
		{
			model:       (*models.Event)(nil),
			foreignKeys: []string{`("created_by") REFERENCES "members" ("id")`},
		},
		{model: (*models.InventoryCategory)(nil)},
		{
			model:       (*models.InventoryItem)(nil),
			foreignKeys: []string{`("category_id") REFERENCES "inventory_categories" ("id")`},
		},
		{
			model:       (*models.Competition)(nil),
			foreignKeys: []string{`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*models.CompetitionGroup)(nil),
			foreignKeys: []string{`("competition_id") REFERENCES "competitions" ("id") ON DELETE CASCADE`},
		},
		{
			model:       (*models.CompetitionTeam)(nil),
			foreignKeys: []string{`("group_id") REFERENCES "competition_groups" ("id") ON DELETE CASCADE`},
		},
		{
			model: (*models.CompetitionRegistration)(nil),
			foreignKeys: []string{
				`("competition_id") REFERENCES "competitions" ("id") ON DELETE CASCADE`,
				`("group_id") REFERENCES "competition_groups" ("id") ON DELETE CASCADE`,
				`("team_id") REFERENCES "competition_teams" ("id") ON DELETE SET NULL`,
				`("member_id") REFERENCES "members" ("id")`,
			},
		},
		{
			model:       (*models.ArrowScore)(nil),
			foreignKeys: []string{`("registration_id") REFERENCES "competition_registrations" ("id") ON DELETE CASCADE`},
		},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}

	indexes := []indexSpec{
		{(*models.CompetitionGroup)(nil), "competition_groups_competition_idx", []string{"competition_id"}},
		{(*models.CompetitionRegistration)(nil), "competition_registrations_group_idx", []string{"group_id"}},
		{(*models.InventoryItem)(nil), "inventory_items_category_idx", []string{"category_id"}},
	}
	for _, ix := range indexes {
		_, err := db.NewCreateIndex().Model(ix.model).Index(ix.name).Column(ix.columns...).IfNotExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("creating index %s: %w", ix.name, err)
		}
	}

	return nil
}
