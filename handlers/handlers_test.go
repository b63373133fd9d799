package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/archeryapi/competition"
	"github.com/padraicbc/archeryapi/models"
	"github.com/padraicbc/archeryapi/testutil"
)

var jwtKey = []byte("handler-test-key")

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) (*apiClient, *Handler) {
	t.Helper()
	bdb := testutil.NewDB(t)
	log := zaptest.NewLogger(t)
	svc := competition.NewService(bdb, log, competition.WithShuffler(competition.NewSeededShuffler(3)))
	h := New(bdb, svc, log, jwtKey, "https://club.example")

	e := echo.New()
	h.Mount(e)
	return &apiClient{t: t, e: e}, h
}

func (a *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) expect(method, path, token string, body any, status int, out any) {
	a.t.Helper()
	rec := a.do(method, path, token, body)
	if rec.Code != status {
		a.t.Fatalf("%s %s: status %d, want %d: %s", method, path, rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func addMember(t *testing.T, h *Handler, username, role string) *models.Member {
	t.Helper()
	hash, err := HashPasswordForUser(username, "pw-"+username)
	if err != nil {
		t.Fatal(err)
	}
	m := testutil.Member(t, h.db, username, role)
	if _, err := h.db.NewUpdate().Model(m).Set("password = ?", hash).WherePK().Exec(context.Background()); err != nil {
		t.Fatal(err)
	}
	return m
}

func (a *apiClient) signin(username string) string {
	a.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	a.expect(http.MethodPost, "/api/signin", "", map[string]string{"username": username, "password": "pw-" + username}, http.StatusOK, &out)
	return out.Token
}

func TestSignin(t *testing.T) {
	api, h := newAPI(t)
	addMember(t, h, "robin", models.RoleMember)

	if rec := api.do(http.MethodPost, "/api/signin", "", map[string]string{"username": "robin", "password": "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d", rec.Code)
	}
	if rec := api.do(http.MethodPost, "/api/signin", "", map[string]string{"username": "nobody", "password": "x"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown user: status %d", rec.Code)
	}
	if tok := api.signin("robin"); tok == "" {
		t.Error("empty token")
	}
	if rec := api.do(http.MethodGet, "/api/competitions", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("no token: status %d", rec.Code)
	}

	gone := addMember(t, h, "guy", models.RoleMember)
	if _, err := h.db.NewUpdate().Model(gone).Set("is_active = ?", false).WherePK().Exec(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rec := api.do(http.MethodPost, "/api/signin", "", map[string]string{"username": "guy", "password": "pw-guy"}); rec.Code != http.StatusForbidden {
		t.Errorf("inactive member: status %d, want 403", rec.Code)
	}
}

func TestCompetitionFlow(t *testing.T) {
	api, h := newAPI(t)
	addMember(t, h, "admin", models.RoleAdmin)
	archers := []*models.Member{
		addMember(t, h, "robin", models.RoleMember),
		addMember(t, h, "marian", models.RoleMember),
		addMember(t, h, "tuck", models.RoleMember),
	}
	admin := api.signin("admin")
	robin := api.signin("robin")

	var event models.Event
	api.expect(http.MethodPost, "/api/events", robin, map[string]any{
		"name": "Club shoot", "location": "Field", "date": "2030-05-01", "startTime": "10:00",
	}, http.StatusForbidden, nil)
	api.expect(http.MethodPost, "/api/events", admin, map[string]any{
		"name": "Club shoot", "location": "Field", "date": "2030-05-01", "startTime": "10:00",
	}, http.StatusCreated, &event)

	var comp models.Competition
	api.expect(http.MethodPost, fmt.Sprintf("/api/events/%d/competition", event.ID), admin,
		map[string]int{"numberOfRounds": 2, "arrowsPerRound": 3, "maxTeamSize": 2}, http.StatusCreated, &comp)
	api.expect(http.MethodPost, fmt.Sprintf("/api/events/%d/competition", event.ID), admin,
		map[string]int{}, http.StatusBadRequest, nil)
	base := fmt.Sprintf("/api/competitions/%d", comp.ID)

	api.expect(http.MethodPost, base+"/open-registration", admin, nil, http.StatusConflict, nil)
	var group models.CompetitionGroup
	api.expect(http.MethodPost, base+"/groups", admin, map[string]string{"name": "Open"}, http.StatusCreated, &group)
	api.expect(http.MethodPost, base+"/groups", admin, map[string]string{"name": ""}, http.StatusBadRequest, nil)
	api.expect(http.MethodGet, base+"/results", admin, nil, http.StatusConflict, nil)
	api.expect(http.MethodPost, base+"/open-registration", admin, nil, http.StatusOK, nil)

	var reg models.CompetitionRegistration
	api.expect(http.MethodPost, base+"/register", robin, map[string]any{"groupID": group.ID}, http.StatusCreated, &reg)
	api.expect(http.MethodPost, base+"/register", robin, map[string]any{"groupID": group.ID}, http.StatusBadRequest, nil)
	for _, m := range archers[1:] {
		api.expect(http.MethodPost, base+"/registrations", admin,
			map[string]any{"memberID": m.ID, "groupID": group.ID}, http.StatusCreated, nil)
	}

	api.expect(http.MethodPost, base+"/start", admin, nil, http.StatusConflict, nil)
	var teams competition.TeamGeneration
	api.expect(http.MethodPost, base+"/teams", admin, nil, http.StatusOK, &teams)
	if teams.TeamsCreated != 1 || teams.Inventory.HasEnough {
		t.Errorf("3 archers with max 2 should form one team, got %+v", teams)
	}
	api.expect(http.MethodPost, base+"/start", admin, nil, http.StatusOK, nil)

	regPath := fmt.Sprintf("/api/registrations/%d", reg.ID)
	api.expect(http.MethodPost, regPath+"/arrows", robin, map[string]int{"roundNumber": 1, "arrowNumber": 1, "points": 9}, http.StatusForbidden, nil)
	api.expect(http.MethodPost, regPath+"/arrows", admin, map[string]int{"roundNumber": 1, "arrowNumber": 1, "points": 12}, http.StatusBadRequest, nil)
	var card competition.Card
	api.expect(http.MethodPost, regPath+"/rounds", admin, map[string]any{
		"roundNumber": 1,
		"arrows":      []map[string]any{{"points": 10, "isX": true}, {"points": 9}, {"points": 8}},
	}, http.StatusCreated, &card)
	if card.Scorecard.TotalScore != 27 || card.Scorecard.CurrentRound != 2 {
		t.Errorf("unexpected scorecard %+v", card.Scorecard)
	}

	api.expect(http.MethodGet, regPath+"/scorecard", robin, nil, http.StatusOK, &card)
	marian := api.signin("marian")
	api.expect(http.MethodGet, regPath+"/scorecard", marian, nil, http.StatusForbidden, nil)
	api.expect(http.MethodGet, "/api/registrations/999/scorecard", admin, nil, http.StatusNotFound, nil)

	// other archers' cards are only visible through the admin overview
	api.expect(http.MethodGet, base+"/scoring", marian, nil, http.StatusForbidden, nil)
	var overview competition.Overview
	api.expect(http.MethodGet, base+"/scoring", admin, nil, http.StatusOK, &overview)
	if len(overview.Cards) != len(archers) {
		t.Errorf("overview has %d cards, want %d", len(overview.Cards), len(archers))
	}

	rec := api.do(http.MethodGet, regPath+"/qr.png", robin, nil)
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("qr: status %d, type %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}

	var done competition.Completion
	api.expect(http.MethodPost, base+"/complete", admin, nil, http.StatusOK, &done)
	if done.FilledArrows != 3+6+6 {
		t.Errorf("FilledArrows = %d, want 15", done.FilledArrows)
	}

	var results resultsResponse
	api.expect(http.MethodGet, base+"/results", robin, nil, http.StatusOK, &results)
	if len(results.Groups) != 1 || results.Groups[0].Standings[0].RegistrationID != reg.ID {
		t.Errorf("robin should lead: %+v", results.Groups)
	}
	if results.Stats.CompletedParticipants != 3 {
		t.Errorf("all cards complete after auto-fill, got %+v", results.Stats)
	}

	var list []models.Competition
	api.expect(http.MethodGet, "/api/competitions?upcoming=true", robin, nil, http.StatusOK, &list)
	if len(list) != 1 || list[0].Event == nil {
		t.Errorf("unexpected list %+v", list)
	}

	api.expect(http.MethodDelete, base, admin, nil, http.StatusNoContent, nil)
	api.expect(http.MethodGet, base, admin, nil, http.StatusNotFound, nil)
	api.expect(http.MethodGet, "/api/competitions/abc", admin, nil, http.StatusBadRequest, nil)
}

func TestInventoryEndpoints(t *testing.T) {
	api, h := newAPI(t)
	addMember(t, h, "admin", models.RoleAdmin)
	admin := api.signin("admin")

	var item models.InventoryItem
	api.expect(http.MethodPost, "/api/inventory", admin, map[string]any{
		"category": models.TargetFaceCategory, "name": "WA 122", "quantity": 4, "faceSizeCm": 122,
	}, http.StatusCreated, &item)
	api.expect(http.MethodPost, "/api/inventory", admin, map[string]any{
		"category": models.TargetFaceCategory, "name": "80cm face", "quantity": 2,
	}, http.StatusCreated, nil)
	api.expect(http.MethodPost, "/api/inventory", admin, map[string]any{"name": "x"}, http.StatusBadRequest, nil)

	api.expect(http.MethodPut, fmt.Sprintf("/api/inventory/%d/quantity", item.ID), admin, map[string]int{"quantity": 1}, http.StatusNoContent, nil)
	api.expect(http.MethodPut, "/api/inventory/999/quantity", admin, map[string]int{"quantity": 1}, http.StatusNotFound, nil)
	api.expect(http.MethodPut, fmt.Sprintf("/api/inventory/%d/quantity", item.ID), admin, map[string]int{"quantity": -1}, http.StatusBadRequest, nil)

	var items []models.InventoryItem
	api.expect(http.MethodGet, "/api/inventory?category=target%20faces", admin, nil, http.StatusOK, &items)
	if len(items) != 2 || items[1].Quantity != 1 || items[1].Category == nil {
		t.Errorf("unexpected items %+v", items)
	}
}
