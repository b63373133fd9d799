package competition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/padraicbc/archeryapi/models"
)

// InventoryStatus is the advisory target-face check for a competition.
type InventoryStatus struct {
	HasEnough    bool   `json:"hasEnough"`
	Required     int    `json:"required"`
	Available    int    `json:"available"`
	Shortage     int    `json:"shortage"`
	TargetSizeCM int    `json:"targetSizeCm"`
	Message      string `json:"message"`
}

var faceSizeInName = regexp.MustCompile(`(?i)(\d+)\s*cm`)

// FaceSizeCM returns the face size of an inventory item. The structured
// column is authoritative; attributes.face_size and a "<n>cm" in the name
// are a best-effort path for rows imported from the old system.
func FaceSizeCM(item *models.InventoryItem) (int, bool) {
	if item.FaceSizeCM != nil {
		return *item.FaceSizeCM, true
	}
	if v, ok := item.Attributes["face_size"]; ok {
		if n, ok := attributeInt(v); ok {
			return n, true
		}
	}
	if m := faceSizeInName.FindStringSubmatch(item.Name); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}

func attributeInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case string:
		s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(x)), "cm")
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	return 0, false
}

// EvaluateTargetFaces compares the faces of targetSize in items against the
// number of teams that need one.
func EvaluateTargetFaces(targetSize, teams int, items []*models.InventoryItem) InventoryStatus {
	st := InventoryStatus{Required: teams, TargetSizeCM: targetSize}
	for _, it := range items {
		if size, ok := FaceSizeCM(it); ok && size == targetSize {
			st.Available += it.Quantity
		}
	}
	st.Shortage = max(0, st.Required-st.Available)
	st.HasEnough = st.Shortage == 0

	switch {
	case st.Required == 0:
		st.Message = "No teams generated yet, no target faces required."
	case st.Shortage > 0:
		st.Message = fmt.Sprintf("Not enough %dcm target faces: %d needed for %d teams, %d available (short by %d).",
			targetSize, st.Required, teams, st.Available, st.Shortage)
	case st.Available == st.Required:
		st.Message = fmt.Sprintf("Exactly %d %dcm target faces available for %d teams.", st.Available, targetSize, teams)
	default:
		st.Message = fmt.Sprintf("%d %dcm target faces available for %d teams (%d spare).",
			st.Available, targetSize, teams, st.Available-st.Required)
	}
	return st
}
