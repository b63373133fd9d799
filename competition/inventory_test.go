package competition

import (
	"strings"
	"testing"

	"github.com/padraicbc/archeryapi/models"
)

func intPtr(n int) *int { return &n }

func TestFaceSizeCM(t *testing.T) {
	tests := []struct {
		name   string
		item   models.InventoryItem
		want   int
		wantOK bool
	}{
		{"structured column", models.InventoryItem{Name: "40cm face", FaceSizeCM: intPtr(122)}, 122, true},
		{"attribute number", models.InventoryItem{Name: "Face", Attributes: map[string]any{"face_size": float64(80)}}, 80, true},
		{"attribute string", models.InventoryItem{Name: "Face", Attributes: map[string]any{"face_size": "60 cm"}}, 60, true},
		{"name fallback", models.InventoryItem{Name: "WA Face 122 CM"}, 122, true},
		{"name without unit", models.InventoryItem{Name: "Face pack 10"}, 0, false},
		{"bad attribute falls through to name", models.InventoryItem{Name: "40cm", Attributes: map[string]any{"face_size": "big"}}, 40, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FaceSizeCM(&tt.item)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FaceSizeCM() = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEvaluateTargetFaces(t *testing.T) {
	items := []*models.InventoryItem{
		{Name: "122cm face", Quantity: 2},
		{Name: "80cm face", Quantity: 9},
		{Name: "Spot", FaceSizeCM: intPtr(40), Quantity: 4},
	}

	tests := []struct {
		name      string
		size      int
		teams     int
		enough    bool
		available int
		shortage  int
		msg       string
	}{
		{"shortage", 122, 3, false, 2, 1, "short by 1"},
		{"exact", 122, 2, true, 2, 0, "Exactly 2"},
		{"surplus", 40, 1, true, 4, 0, "3 spare"},
		{"no teams", 122, 0, true, 2, 0, "No teams"},
		{"no matching size", 60, 1, false, 0, 1, "Not enough 60cm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := EvaluateTargetFaces(tt.size, tt.teams, items)
			if st.HasEnough != tt.enough || st.Available != tt.available || st.Shortage != tt.shortage || st.Required != tt.teams {
				t.Errorf("EvaluateTargetFaces() = %+v", st)
			}
			if !strings.Contains(st.Message, tt.msg) {
				t.Errorf("message %q does not contain %q", st.Message, tt.msg)
			}
		})
	}
}
