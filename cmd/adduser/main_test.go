package main

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/archeryapi/handlers"
	"github.com/padraicbc/archeryapi/models"
	"github.com/padraicbc/archeryapi/testutil"
)

func TestSaveMemberResetsExistingLogin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	imported := &models.Member{
		Username:  "robin",
		Email:     "robin@club.test",
		FirstName: "Robin",
		LastName:  "Locksley",
		Password:  "pbkdf2:sha256:legacy",
		Role:      models.RoleMember,
		IsActive:  false,
		CreatedAt: time.Now(),
	}
	if err := saveMember(ctx, db, imported); err != nil {
		t.Fatalf("first save: %v", err)
	}

	hash, err := handlers.HashPasswordForUser("robin", "arrow")
	if err != nil {
		t.Fatal(err)
	}
	reset := &models.Member{
		Username:  "robin",
		Email:     "other@localhost",
		Password:  hash,
		Role:      models.RoleAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := saveMember(ctx, db, reset); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var got models.Member
	if err := db.NewSelect().Model(&got).Where("username = ?", "robin").Scan(ctx); err != nil {
		t.Fatal(err)
	}
	if got.Email != "robin@club.test" || got.FirstName != "Robin" {
		t.Errorf("profile fields should be kept, got %+v", got)
	}
	if got.Role != models.RoleAdmin || !got.IsActive {
		t.Errorf("role/active not updated: %+v", got)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("arrow")); err != nil {
		t.Errorf("password not reset: %v", err)
	}
}
