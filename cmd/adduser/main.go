// cmd/adduser/main.go
// Creates or updates a club member in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username robin -password testing -role admin
//
// Re-running for an existing username resets the password, role and
// active flag; this is how members imported by cmd/migrate get a usable login.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/archeryapi/config"
	bundb "github.com/padraicbc/archeryapi/db"
	"github.com/padraicbc/archeryapi/handlers"
	"github.com/padraicbc/archeryapi/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	email := flag.String("email", "", "email address (defaults to <username>@localhost)")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	role := flag.String("role", models.RoleMember, "role: member or admin")
	flag.Parse()

	if *role != models.RoleMember && *role != models.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	m := &models.Member{
		Username:  *username,
		Email:     *email,
		FirstName: *first,
		LastName:  *last,
		Password:  hash,
		Role:      *role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if m.Email == "" {
		m.Email = *username + "@localhost"
	}

	if err := saveMember(ctx, db, m); err != nil {
		log.Fatal("save member:", err)
	}

	fmt.Printf("member %q saved (%s)\n", m.Username, m.Role)
}

// saveMember inserts m, or updates the login fields of the member with the same username.
func saveMember(ctx context.Context, db bun.IDB, m *models.Member) error {
	_, err := db.NewInsert().Model(m).
		On("CONFLICT (username) DO UPDATE").
		Set("password = EXCLUDED.password").
		Set("role = EXCLUDED.role").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	return err
}
