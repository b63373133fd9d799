package competition

import (
	"slices"

	"github.com/padraicbc/archeryapi/apperr"
	"github.com/padraicbc/archeryapi/models"
)

// Action is something done to a competition that depends on its status.
type Action string

const (
	ActionEditGroups       Action = "edit groups"
	ActionOpenRegistration Action = "open registration"
	ActionRegister         Action = "register"
	ActionGenerateTeams    Action = "generate teams"
	ActionStart            Action = "start"
	ActionScore            Action = "record scores"
	ActionComplete         Action = "complete"
)

type transition struct {
	from []models.CompetitionStatus
	// to is empty for actions that do not change the status.
	to models.CompetitionStatus
}

var transitions = map[Action]transition{
	ActionEditGroups:       {from: []models.CompetitionStatus{models.StatusSetup}},
	ActionOpenRegistration: {from: []models.CompetitionStatus{models.StatusSetup}, to: models.StatusRegistrationOpen},
	ActionRegister:         {from: []models.CompetitionStatus{models.StatusRegistrationOpen}},
	ActionGenerateTeams:    {from: []models.CompetitionStatus{models.StatusRegistrationOpen}},
	ActionStart:            {from: []models.CompetitionStatus{models.StatusRegistrationOpen}, to: models.StatusInProgress},
	ActionScore:            {from: []models.CompetitionStatus{models.StatusInProgress}},
	ActionComplete: {
		from: []models.CompetitionStatus{models.StatusRegistrationOpen, models.StatusInProgress},
		to:   models.StatusCompleted,
	},
}

// Allowed reports whether action may run while a competition is in status.
func Allowed(status models.CompetitionStatus, action Action) bool {
	t, ok := transitions[action]
	return ok && slices.Contains(t.from, status)
}

// Next returns the status after action, which is status itself for actions
// that do not move the lifecycle. A disallowed action is a state error.
func Next(status models.CompetitionStatus, action Action) (models.CompetitionStatus, error) {
	if !Allowed(status, action) {
		return status, apperr.State("cannot %s while competition is %s", action, status)
	}
	if to := transitions[action].to; to != "" {
		return to, nil
	}
	return status, nil
}

// Require is Next for actions that only need the status check.
func Require(c *models.Competition, action Action) error {
	_, err := Next(c.Status, action)
	return err
}
