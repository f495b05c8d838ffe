package domain

import "regexp"

// Column names of the session table.
const (
	ColumnID          = "id"
	ColumnSessionID   = "session_id"
	ColumnTimeCreated = "time_created"
	ColumnSessionData = "session_data"
)

// DefaultTable is the table name used when none is configured.
const DefaultTable = "sessions"

// Record is one stored snapshot of a session.
// The current value of a session is the record with the greatest ID.
type Record struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id"`
	TimeCreated int64  `json:"time_created"`
	SessionData string `json:"session_data"` // base64 encoded payload
}

// Row returns the insertable columns of the record. ID is assigned by storage.
func (r Record) Row() Row {
	return Row{
		ColumnTimeCreated: r.TimeCreated,
		ColumnSessionID:   r.SessionID,
		ColumnSessionData: r.SessionData,
	}
}

// Row maps column names to values for an insert.
type Row map[string]any

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdentifier reports whether name can be interpolated into a statement
// as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
