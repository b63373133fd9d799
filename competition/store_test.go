package competition

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
	"github.com/padraicbc/archeryapi/testutil"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	bdb := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return NewService(bdb, zap.NewNop()), mock
}

func TestDriverErrorIsInternal(t *testing.T) {
	svc, mock := newMockService(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT .* FROM "competitions"`).WillReturnError(boom)

	_, err := svc.CheckTargetFaceInventory(context.Background(), 1)
	if !apperr.Is(err, apperr.KindInternal) || !errors.Is(err, boom) {
		t.Errorf("expected internal error wrapping driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestNoRowsIsNotFound(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectQuery(`SELECT .* FROM "competitions"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.CompletionStats(context.Background(), 7)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFailedTransactionRollsBack(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "competitions"`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	if _, err := svc.GenerateTeams(context.Background(), 3); !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUniqueViolationIsConflict(t *testing.T) {
	bdb := testutil.NewDB(t)
	testutil.Member(t, bdb, "dup", models.RoleMember)
	_, err := bdb.NewInsert().Model(&models.Member{Username: "dup", Email: "other@club.test"}).Exec(context.Background())
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if got := dbError(err, "member"); !apperr.Is(got, apperr.KindConflict) {
		t.Errorf("dbError = %v, want conflict", got)
	}
	if got := dbError(apperr.State("x"), "member"); !apperr.Is(got, apperr.KindState) {
		t.Errorf("classified errors must pass through, got %v", got)
	}
	if dbError(nil, "member") != nil {
		t.Error("nil should stay nil")
	}
}

func TestRegisterLocksCompetition(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "competitions" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "status"}).
			AddRow(4, 1, string(models.StatusSetup)))
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterInput{CompetitionID: 4, MemberID: 1, GroupID: 1})
	if !apperr.Is(err, apperr.KindState) {
		t.Errorf("expected state error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestScoringReadsArrowsAfterLock(t *testing.T) {
	svc, mock := newMockService(t)
	boom := errors.New("stop here")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .*"competition_id" FROM "competition_registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"competition_id"}).AddRow(2))
	mock.ExpectQuery(`SELECT .* FROM "competitions" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "number_of_rounds", "arrows_per_round"}).
			AddRow(2, string(models.StatusInProgress), 2, 3))
	mock.ExpectQuery(`SELECT .* FROM "competition_registrations"`).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := svc.RecordArrow(context.Background(), ArrowInput{RegistrationID: 5, RoundNumber: 1, ArrowNumber: 1, Points: 7})
	if !errors.Is(err, boom) {
		t.Errorf("expected the registration load after the lock to fail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
