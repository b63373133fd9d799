// Package testutil provides an in-memory store and fixtures for tests.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/padraicbc/archeryapi/db"
	"github.com/padraicbc/archeryapi/models"
)

// NewDB opens an in-memory SQLite database with all tables created. It is
// closed when the test ends.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every connection to :memory: is a separate database
	sqldb.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = bdb.Close() })

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return bdb
}

func insert(t *testing.T, bdb bun.IDB, model any) {
	t.Helper()
	if _, err := bdb.NewInsert().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("insert %T: %v", model, err)
	}
}

// Member inserts an active member with the given role.
func Member(t *testing.T, bdb bun.IDB, username, role string) *models.Member {
	t.Helper()
	m := &models.Member{
		Username:  username,
		Email:     username + "@club.test",
		FirstName: username,
		LastName:  "Archer",
		Password:  "x",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	insert(t, bdb, m)
	return m
}

// Members inserts n members named prefix1..prefixN.
func Members(t *testing.T, bdb bun.IDB, prefix string, n int) []*models.Member {
	t.Helper()
	out := make([]*models.Member, n)
	for i := range out {
		out[i] = Member(t, bdb, fmt.Sprintf("%s%d", prefix, i+1), models.RoleMember)
	}
	return out
}

// Event inserts an event on date (YYYY-MM-DD) created by createdBy.
func Event(t *testing.T, bdb bun.IDB, name, date string, createdBy int) *models.Event {
	t.Helper()
	e := &models.Event{
		Name:          name,
		Location:      "Club field",
		Date:          date,
		StartTime:     "10:00",
		DurationHours: 3,
		CreatedBy:     createdBy,
	}
	insert(t, bdb, e)
	return e
}

// TargetFaces inserts a stock line in the target face category, creating the
// category on first use.
func TargetFaces(t *testing.T, bdb bun.IDB, name string, sizeCM *int, quantity int) *models.InventoryItem {
	t.Helper()
	ctx := context.Background()

	cat := new(models.InventoryCategory)
	err := bdb.NewSelect().Model(cat).Where("name = ?", models.TargetFaceCategory).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		cat.Name = models.TargetFaceCategory
		insert(t, bdb, cat)
	} else if err != nil {
		t.Fatalf("load category: %v", err)
	}

	item := &models.InventoryItem{
		CategoryID: cat.ID,
		Name:       name,
		Quantity:   quantity,
		Unit:       "piece",
		FaceSizeCM: sizeCM,
	}
	insert(t, bdb, item)
	return item
}
