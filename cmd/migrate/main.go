// cmd/migrate/main.go
// Copies members, events and inventory from the old club MySQL database into PostgreSQL.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/club?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
//
// Old password hashes are not bcrypt; imported members need a new password
// from cmd/adduser before they can sign in.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/padraicbc/archeryapi/competition"
	"github.com/padraicbc/archeryapi/config"
	bundb "github.com/padraicbc/archeryapi/db"
	"github.com/padraicbc/archeryapi/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/club?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"members", func() (int, error) { return migrateMembers(ctx, myDB, pgDB) }},
		{"events", func() (int, error) { return migrateEvents(ctx, myDB, pgDB) }},
		{"inventory_categories", func() (int, error) { return migrateCategories(ctx, myDB, pgDB) }},
		{"inventory_items", func() (int, error) { return migrateItems(ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-22s  %d rows migrated", s.name, n)
	}

	resetSequences(ctx, pgDB)
	log.Println("migration complete")
}

// --- helpers ---

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullStr(n sql.NullString) *string {
	if !n.Valid || n.String == "" {
		return nil
	}
	return &n.String
}

// batcher collects rows and flushes them every batchSize rows.
type batcher[T any] struct {
	ctx   context.Context
	db    *bun.DB
	rows  []T
	total int
}

func (b *batcher[T]) add(row T) error {
	b.rows = append(b.rows, row)
	if len(b.rows) < batchSize {
		return nil
	}
	return b.flush()
}

func (b *batcher[T]) flush() error {
	if err := bulkInsert(b.ctx, b.db, b.rows); err != nil {
		return err
	}
	b.total += len(b.rows)
	b.rows = b.rows[:0]
	return nil
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, pgDB *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pgDB.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// --- per-table migrations ---

func migrateMembers(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT id, username, email, password_hash, role, first_name, last_name, created_at, is_active
		 FROM user`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	b := &batcher[models.Member]{ctx: ctx, db: pgDB}
	for rows.Next() {
		var (
			m         models.Member
			createdAt sql.NullTime
			active    sql.NullBool
		)
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.Password, &m.Role,
			&m.FirstName, &m.LastName, &createdAt, &active); err != nil {
			return b.total, err
		}
		m.CreatedAt = time.Now()
		if createdAt.Valid {
			m.CreatedAt = createdAt.Time
		}
		m.IsActive = !active.Valid || active.Bool
		if m.Role != models.RoleAdmin {
			m.Role = models.RoleMember
		}
		if err := b.add(m); err != nil {
			return b.total, err
		}
	}
	if err := b.flush(); err != nil {
		return b.total, err
	}
	return b.total, rows.Err()
}

func migrateEvents(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT id, name, description, location, date, TIME_FORMAT(start_time, '%H:%i'),
		        duration_hours, max_participants, created_by
		 FROM shooting_event`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	b := &batcher[models.Event]{ctx: ctx, db: pgDB}
	for rows.Next() {
		var (
			e       models.Event
			desc    sql.NullString
			date    time.Time
			maxPart sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Name, &desc, &e.Location, &date, &e.StartTime,
			&e.DurationHours, &maxPart, &e.CreatedBy); err != nil {
			return b.total, err
		}
		e.Description = nullStr(desc)
		e.Date = date.Format(time.DateOnly)
		e.MaxParticipants = nullInt(maxPart)
		if err := b.add(e); err != nil {
			return b.total, err
		}
	}
	if err := b.flush(); err != nil {
		return b.total, err
	}
	return b.total, rows.Err()
}

func migrateCategories(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx, "SELECT id, name, description FROM inventory_category")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	b := &batcher[models.InventoryCategory]{ctx: ctx, db: pgDB}
	for rows.Next() {
		var (
			c    models.InventoryCategory
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return b.total, err
		}
		c.Description = nullStr(desc)
		if err := b.add(c); err != nil {
			return b.total, err
		}
	}
	if err := b.flush(); err != nil {
		return b.total, err
	}
	return b.total, rows.Err()
}

// migrateItems copies stock lines. The old schema kept target face sizes in a
// JSON attribute or only in the item name; both are resolved into face_size_cm
// for items in the target face category.
func migrateItems(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		`SELECT i.id, i.category_id, c.name, i.name, i.quantity, i.unit, i.attributes
		 FROM inventory_item i
		 JOIN inventory_category c ON c.id = i.category_id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	b := &batcher[models.InventoryItem]{ctx: ctx, db: pgDB}
	for rows.Next() {
		var (
			it       models.InventoryItem
			category string
			unit     sql.NullString
			attrs    []byte
		)
		if err := rows.Scan(&it.ID, &it.CategoryID, &category, &it.Name, &it.Quantity, &unit, &attrs); err != nil {
			return b.total, err
		}
		it.Unit = "piece"
		if unit.Valid && unit.String != "" {
			it.Unit = unit.String
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &it.Attributes); err != nil {
				log.Printf("item %d: ignoring bad attributes: %v", it.ID, err)
			}
		}
		if strings.EqualFold(strings.TrimSpace(category), models.TargetFaceCategory) {
			if size, ok := competition.FaceSizeCM(&it); ok {
				it.FaceSizeCM = &size
			} else {
				log.Printf("item %d (%s): no face size found", it.ID, it.Name)
			}
		}
		if err := b.add(it); err != nil {
			return b.total, err
		}
	}
	if err := b.flush(); err != nil {
		return b.total, err
	}
	return b.total, rows.Err()
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, pgDB *bun.DB) {
	tables := []string{"members", "events", "inventory_categories", "inventory_items"}
	for _, t := range tables {
		seq := t + "_id_seq"
		q := fmt.Sprintf(
			"SELECT setval('%s', COALESCE((SELECT MAX(id) FROM %s), 1))",
			seq, t,
		)
		if _, err := pgDB.ExecContext(ctx, q); err != nil {
			log.Printf("reset seq %s: %v", seq, err)
		}
	}
	log.Println("sequences reset")
}
