package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CompetitionStatus is the lifecycle state of a competition.
type CompetitionStatus string

const (
	StatusSetup            CompetitionStatus = "setup"
	StatusRegistrationOpen CompetitionStatus = "registration_open"
	StatusInProgress       CompetitionStatus = "in_progress"
	StatusCompleted        CompetitionStatus = "completed"
)

// MaxArrowPoints is the highest value a single arrow can score.
const MaxArrowPoints = 10

// Competition is the scored shoot attached to one event.
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:c"`

	ID             int               `bun:"id,pk,autoincrement" json:"id"`
	EventID        int               `bun:"event_id,notnull,unique" json:"eventID"`
	NumberOfRounds int               `bun:"number_of_rounds,notnull" json:"numberOfRounds"`
	ArrowsPerRound int               `bun:"arrows_per_round,notnull" json:"arrowsPerRound"`
	TargetSizeCM   int               `bun:"target_size_cm,notnull" json:"targetSizeCm"`
	MaxTeamSize    int               `bun:"max_team_size,notnull" json:"maxTeamSize"`
	Status         CompetitionStatus `bun:"status,notnull" json:"status"`
	CreatedBy      int               `bun:"created_by,notnull" json:"createdBy"`
	CreatedAt      time.Time         `bun:"created_at,notnull" json:"createdAt"`

	Event  *Event              `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
	Groups []*CompetitionGroup `bun:"rel:has-many,join:id=competition_id" json:"groups,omitempty"`
}

// TotalArrows is the number of arrows each archer shoots.
func (c *Competition) TotalArrows() int {
	return c.NumberOfRounds * c.ArrowsPerRound
}

// MaxPossibleScore is TotalArrows at ten points each.
func (c *Competition) MaxPossibleScore() int {
	return c.TotalArrows() * MaxArrowPoints
}

// RoundOf returns the round an arrow number (1-based) belongs to.
func (c *Competition) RoundOf(arrowNumber int) int {
	return (arrowNumber-1)/c.ArrowsPerRound + 1
}

// CompetitionGroup is an age/skill bracket within a competition.
type CompetitionGroup struct {
	bun.BaseModel `bun:"table:competition_groups,alias:cg"`

	ID            int     `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID int     `bun:"competition_id,notnull" json:"competitionID"`
	Name          string  `bun:"name,notnull" json:"name"`
	Description   *string `bun:"description" json:"description,omitempty"`
	MinAge        *int    `bun:"min_age" json:"minAge,omitempty"`
	MaxAge        *int    `bun:"max_age" json:"maxAge,omitempty"`

	Teams []*CompetitionTeam `bun:"rel:has-many,join:id=group_id" json:"teams,omitempty"`
}

// CompetitionTeam is a set of a group's archers sharing one target.
type CompetitionTeam struct {
	bun.BaseModel `bun:"table:competition_teams,alias:ct"`

	ID           int    `bun:"id,pk,autoincrement" json:"id"`
	GroupID      int    `bun:"group_id,notnull,unique:competition_teams_group_number" json:"groupID"`
	TeamNumber   int    `bun:"team_number,notnull,unique:competition_teams_group_number" json:"teamNumber"`
	TargetNumber int    `bun:"target_number,notnull" json:"targetNumber"`
	Name         string `bun:"name,notnull" json:"name"`
}

// CompetitionRegistration is a member's entry into a competition.
type CompetitionRegistration struct {
	bun.BaseModel `bun:"table:competition_registrations,alias:cr"`

	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID int       `bun:"competition_id,notnull,unique:competition_registrations_member" json:"competitionID"`
	MemberID      int       `bun:"member_id,notnull,unique:competition_registrations_member" json:"memberID"`
	GroupID       int       `bun:"group_id,notnull" json:"groupID"`
	TeamID        *int      `bun:"team_id" json:"teamID,omitempty"`
	Notes         *string   `bun:"notes" json:"notes,omitempty"`
	RegisteredAt  time.Time `bun:"registered_at,notnull" json:"registeredAt"`

	Member      *Member           `bun:"rel:belongs-to,join:member_id=id" json:"member,omitempty"`
	Group       *CompetitionGroup `bun:"rel:belongs-to,join:group_id=id" json:"group,omitempty"`
	Team        *CompetitionTeam  `bun:"rel:belongs-to,join:team_id=id" json:"team,omitempty"`
	ArrowScores []*ArrowScore     `bun:"rel:has-many,join:id=registration_id" json:"arrowScores,omitempty"`
}

// ArrowScore is one scored arrow. ArrowNumber runs 1..TotalArrows across all rounds.
type ArrowScore struct {
	bun.BaseModel `bun:"table:arrow_scores,alias:a"`

	ID             int       `bun:"id,pk,autoincrement" json:"id"`
	RegistrationID int       `bun:"registration_id,notnull,unique:arrow_scores_registration_arrow" json:"registrationID"`
	ArrowNumber    int       `bun:"arrow_number,notnull,unique:arrow_scores_registration_arrow" json:"arrowNumber"`
	RoundNumber    int       `bun:"round_number,notnull" json:"roundNumber"`
	Points         int       `bun:"points,notnull" json:"points"`
	IsX            bool      `bun:"is_x,notnull,default:false" json:"isX"`
	AutoFilled     bool      `bun:"auto_filled,notnull,default:false" json:"autoFilled"`
	Notes          *string   `bun:"notes" json:"notes,omitempty"`
	RecordedBy     int       `bun:"recorded_by,notnull" json:"recordedBy"`
	RecordedAt     time.Time `bun:"recorded_at,notnull" json:"recordedAt"`
}
