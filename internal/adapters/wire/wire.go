// Package wire holds the JSON shapes of the SwimTrack REST API. The HTTP
// handlers encode them and the remote storage backend decodes them, so both
// sides of the wire agree on field names.
package wire

import (
	"time"

	accountDomain "swimtrack/internal/domain/account"
	competitionDomain "swimtrack/internal/domain/competition"
	lapDomain "swimtrack/internal/domain/lapcount"
	refereeDomain "swimtrack/internal/domain/referee"
	sessionDomain "swimtrack/internal/domain/swimsession"
	swimmerDomain "swimtrack/internal/domain/swimmer"
	teamDomain "swimtrack/internal/domain/team"
)

// Envelope wraps every successful response body.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// Deleted is the body returned by a competition cascade delete.
type Deleted[T any] struct {
	Deleted T `json:"deleted"`
}

// Competition is the API representation of a competition.
type Competition struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Date               string     `json:"date"`
	StartTime          string     `json:"startTime"`
	EndTime            string     `json:"endTime"`
	Location           string     `json:"location"`
	NumberOfLanes      int        `json:"numberOfLanes"`
	LaneLength         int        `json:"laneLength"`
	DoubleCountTimeout int        `json:"doubleCountTimeout"`
	OrganizerID        string     `json:"organizerId"`
	Status             string     `json:"status"`
	AutoStart          bool       `json:"autoStart"`
	AutoFinish         bool       `json:"autoFinish"`
	ActualStartTime    *time.Time `json:"actualStartTime"`
	ActualEndTime      *time.Time `json:"actualEndTime"`
	ResultsPDF         *string    `json:"resultsPdf"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// FromCompetition converts a domain competition.
func FromCompetition(c competitionDomain.Competition) Competition {
	return Competition{
		ID:                 c.ID,
		Name:               c.Name,
		Description:        c.Description,
		Date:               c.Date,
		StartTime:          c.StartTime,
		EndTime:            c.EndTime,
		Location:           c.Location,
		NumberOfLanes:      c.NumberOfLanes,
		LaneLength:         c.LaneLength,
		DoubleCountTimeout: c.DoubleCountTimeout,
		OrganizerID:        c.OrganizerID,
		Status:             c.Status,
		AutoStart:          c.AutoStart,
		AutoFinish:         c.AutoFinish,
		ActualStartTime:    c.ActualStartTime,
		ActualEndTime:      c.ActualEndTime,
		ResultsPDF:         nullable(c.ResultsPDF),
		CreatedAt:          c.CreatedAt,
	}
}

// Domain converts back to the domain type.
func (w Competition) Domain() competitionDomain.Competition {
	return competitionDomain.Competition{
		ID:                 w.ID,
		Name:               w.Name,
		Description:        w.Description,
		Date:               w.Date,
		StartTime:          w.StartTime,
		EndTime:            w.EndTime,
		Location:           w.Location,
		NumberOfLanes:      w.NumberOfLanes,
		LaneLength:         w.LaneLength,
		DoubleCountTimeout: w.DoubleCountTimeout,
		OrganizerID:        w.OrganizerID,
		Status:             w.Status,
		AutoStart:          w.AutoStart,
		AutoFinish:         w.AutoFinish,
		ActualStartTime:    w.ActualStartTime,
		ActualEndTime:      w.ActualEndTime,
		ResultsPDF:         deref(w.ResultsPDF),
		CreatedAt:          w.CreatedAt,
	}
}

// CompetitionPatch is a create or update request. Absent fields are nil and
// leave the existing value untouched.
type CompetitionPatch struct {
	ID                 string  `json:"id"`
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	Date               *string `json:"date"`
	StartTime          *string `json:"startTime"`
	EndTime            *string `json:"endTime"`
	Location           *string `json:"location"`
	NumberOfLanes      *int    `json:"numberOfLanes"`
	LaneLength         *int    `json:"laneLength"`
	DoubleCountTimeout *int    `json:"doubleCountTimeout"`
	OrganizerID        *string `json:"organizerId"`
	Status             *string `json:"status"`
	AutoStart          *bool   `json:"autoStart"`
	AutoFinish         *bool   `json:"autoFinish"`
	ResultsPDF         *string `json:"resultsPdf"`
}

// Apply copies the present fields onto c. Status is left to the caller
// because a status change also stamps actual start and end times.
func (p CompetitionPatch) Apply(c *competitionDomain.Competition) {
	setString(&c.Name, p.Name)
	setString(&c.Description, p.Description)
	setString(&c.Date, p.Date)
	setString(&c.StartTime, p.StartTime)
	setString(&c.EndTime, p.EndTime)
	setString(&c.Location, p.Location)
	setInt(&c.NumberOfLanes, p.NumberOfLanes)
	setInt(&c.LaneLength, p.LaneLength)
	setInt(&c.DoubleCountTimeout, p.DoubleCountTimeout)
	setString(&c.OrganizerID, p.OrganizerID)
	setBool(&c.AutoStart, p.AutoStart)
	setBool(&c.AutoFinish, p.AutoFinish)
	setString(&c.ResultsPDF, p.ResultsPDF)
}

// Team is the API representation of a team.
type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	Logo          *string   `json:"logo"`
	CompetitionID string    `json:"competitionId"`
	AssignedLane  int       `json:"assignedLane"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromTeam converts a domain team.
func FromTeam(t teamDomain.Team) Team {
	return Team{
		ID:            t.ID,
		Name:          t.Name,
		Color:         t.Color,
		Logo:          nullable(t.Logo),
		CompetitionID: t.CompetitionID,
		AssignedLane:  t.AssignedLane,
		CreatedAt:     t.CreatedAt,
	}
}

// Domain converts back to the domain type.
func (w Team) Domain() teamDomain.Team {
	return teamDomain.Team{
		ID:            w.ID,
		Name:          w.Name,
		Color:         w.Color,
		Logo:          deref(w.Logo),
		CompetitionID: w.CompetitionID,
		AssignedLane:  w.AssignedLane,
		CreatedAt:     w.CreatedAt,
	}
}

// TeamPatch is a create or update request for a team.
type TeamPatch struct {
	ID            string  `json:"id"`
	Name          *string `json:"name"`
	Color         *string `json:"color"`
	Logo          *string `json:"logo"`
	CompetitionID *string `json:"competitionId"`
	AssignedLane  *int    `json:"assignedLane"`
}

// Apply copies the present fields onto t.
func (p TeamPatch) Apply(t *teamDomain.Team) {
	setString(&t.Name, p.Name)
	setString(&t.Color, p.Color)
	setString(&t.Logo, p.Logo)
	setString(&t.CompetitionID, p.CompetitionID)
	setInt(&t.AssignedLane, p.AssignedLane)
}

// Swimmer is the API representation of a swimmer.
type Swimmer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TeamID        string    `json:"teamId"`
	CompetitionID string    `json:"competitionId"`
	IsUnder12     bool      `json:"isUnder12"`
	ParentName    *string   `json:"parentName"`
	ParentContact *string   `json:"parentContact"`
	ParentPresent bool      `json:"parentPresent"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromSwimmer converts a domain swimmer.
func FromSwimmer(s swimmerDomain.Swimmer) Swimmer {
	return Swimmer{
		ID:            s.ID,
		Name:          s.Name,
		TeamID:        s.TeamID,
		CompetitionID: s.CompetitionID,
		IsUnder12:     s.IsUnder12,
		ParentName:    nullable(s.ParentName),
		ParentContact: nullable(s.ParentContact),
		ParentPresent: s.ParentPresent,
		CreatedAt:     s.CreatedAt,
	}
}

// Domain converts back to the domain type.
func (w Swimmer) Domain() swimmerDomain.Swimmer {
	return swimmerDomain.Swimmer{
		ID:            w.ID,
		Name:          w.Name,
		TeamID:        w.TeamID,
		CompetitionID: w.CompetitionID,
		IsUnder12:     w.IsUnder12,
		ParentName:    deref(w.ParentName),
		ParentContact: deref(w.ParentContact),
		ParentPresent: w.ParentPresent,
		CreatedAt:     w.CreatedAt,
	}
}

// SwimmerPatch is a create or update request for a swimmer.
type SwimmerPatch struct {
	ID            string  `json:"id"`
	Name          *string `json:"name"`
	TeamID        *string `json:"teamId"`
	CompetitionID *string `json:"competitionId"`
	IsUnder12     *bool   `json:"isUnder12"`
	ParentName    *string `json:"parentName"`
	ParentContact *string `json:"parentContact"`
	ParentPresent *bool   `json:"parentPresent"`
}

// Apply copies the present fields onto s.
func (p SwimmerPatch) Apply(s *swimmerDomain.Swimmer) {
	setString(&s.Name, p.Name)
	setString(&s.TeamID, p.TeamID)
	setString(&s.CompetitionID, p.CompetitionID)
	setBool(&s.IsUnder12, p.IsUnder12)
	setString(&s.ParentName, p.ParentName)
	setString(&s.ParentContact, p.ParentContact)
	setBool(&s.ParentPresent, p.ParentPresent)
}

// Referee is the API representation of a referee. Password is only set in
// the response that created the referee or reset its password.
type Referee struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UniqueID      string    `json:"uniqueId"`
	CompetitionID string    `json:"competitionId"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	Password      string    `json:"password,omitempty"`
}

// FromReferee converts a domain referee.
func FromReferee(r refereeDomain.Referee) Referee {
	return Referee{
		ID:            r.ID,
		UserID:        r.UserID,
		UniqueID:      r.UniqueID,
		CompetitionID: r.CompetitionID,
		Email:         r.Email,
		CreatedAt:     r.CreatedAt,
	}
}

// Domain converts back to the domain type.
func (w Referee) Domain() refereeDomain.Referee {
	return refereeDomain.Referee{
		ID:            w.ID,
		UserID:        w.UserID,
		UniqueID:      w.UniqueID,
		CompetitionID: w.CompetitionID,
		Email:         w.Email,
		CreatedAt:     w.CreatedAt,
	}
}

// CreateReferee is the body of POST /referees.
type CreateReferee struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competitionId"`
	Email         string `json:"email"`
}

// SwimSession is the API representation of a swim session.
type SwimSession struct {
	ID            string     `json:"id"`
	CompetitionID string     `json:"competitionId"`
	SwimmerID     string     `json:"swimmerId"`
	TeamID        string     `json:"teamId"`
	LaneNumber    int        `json:"laneNumber"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	LapCount      int        `json:"lapCount"`
	IsActive      bool       `json:"isActive"`
}

// FromSwimSession converts a domain session.
func FromSwimSession(s sessionDomain.SwimSession) SwimSession {
	return SwimSession{
		ID:            s.ID,
		CompetitionID: s.CompetitionID,
		SwimmerID:     s.SwimmerID,
		TeamID:        s.TeamID,
		LaneNumber:    s.LaneNumber,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		LapCount:      s.LapCount,
		IsActive:      s.IsActive,
	}
}

// Domain converts back to the domain type.
func (w SwimSession) Domain() sessionDomain.SwimSession {
	return sessionDomain.SwimSession{
		ID:            w.ID,
		CompetitionID: w.CompetitionID,
		SwimmerID:     w.SwimmerID,
		TeamID:        w.TeamID,
		LaneNumber:    w.LaneNumber,
		StartTime:     w.StartTime,
		EndTime:       w.EndTime,
		LapCount:      w.LapCount,
		IsActive:      w.IsActive,
	}
}

// StartSession is the body of POST /swim-sessions.
type StartSession struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competitionId"`
	SwimmerID     string `json:"swimmerId"`
	TeamID        string `json:"teamId"`
	LaneNumber    int    `json:"laneNumber"`
}

// UpdateSession is the body of PUT /swim-sessions/{id}. Setting isActive to
// false ends the session.
type UpdateSession struct {
	IsActive *bool `json:"isActive"`
}

// LapCount is the API representation of a counted lap.
type LapCount struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competitionId"`
	LaneNumber    int       `json:"laneNumber"`
	TeamID        string    `json:"teamId"`
	SwimmerID     string    `json:"swimmerId"`
	RefereeID     *string   `json:"refereeId"`
	LapNumber     int       `json:"lapNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

// FromLapCount converts a domain lap.
func FromLapCount(l lapDomain.LapCount) LapCount {
	return LapCount{
		ID:            l.ID,
		CompetitionID: l.CompetitionID,
		LaneNumber:    l.LaneNumber,
		TeamID:        l.TeamID,
		SwimmerID:     l.SwimmerID,
		RefereeID:     nullable(l.RefereeID),
		LapNumber:     l.LapNumber,
		Timestamp:     l.Timestamp,
	}
}

// Domain converts back to the domain type.
func (w LapCount) Domain() lapDomain.LapCount {
	return lapDomain.LapCount{
		ID:            w.ID,
		CompetitionID: w.CompetitionID,
		LaneNumber:    w.LaneNumber,
		TeamID:        w.TeamID,
		SwimmerID:     w.SwimmerID,
		RefereeID:     deref(w.RefereeID),
		LapNumber:     w.LapNumber,
		Timestamp:     w.Timestamp,
	}
}

// CountLap is the body of POST /lap-counts.
type CountLap struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competitionId"`
	LaneNumber    int    `json:"laneNumber"`
	TeamID        string `json:"teamId"`
	SwimmerID     string `json:"swimmerId"`
	RefereeID     string `json:"refereeId"`
}

// User is the public view of an account. The password hash never leaves
// the server.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromAccount converts a domain account.
func FromAccount(a accountDomain.Account) User {
	return User{ID: a.ID, Email: a.Login, Name: a.Name, Role: a.Role, CreatedAt: a.CreatedAt}
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
	Role      string    `json:"role"`
}

// PasswordReset is the body of POST /auth/reset-password.
type PasswordReset struct {
	UserID string `json:"userId"`
}

// NewPassword is returned once after a password reset.
type NewPassword struct {
	NewPassword string `json:"newPassword"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
