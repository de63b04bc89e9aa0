package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Outcome represents the final classification of one server in a run
type Outcome string

const (
	OutcomeDelete                 Outcome = "DELETE"
	OutcomeKeepNotCandidate       Outcome = "KEEP_NOT_CANDIDATE"
	OutcomeKeepActive             Outcome = "KEEP_ACTIVE"
	OutcomeKeepMetricsUnavailable Outcome = "KEEP_METRICS_UNAVAILABLE"
	OutcomeKeepDeleteFailed       Outcome = "KEEP_DELETE_FAILED"
)

// Deleted reports whether the outcome lands the server on the deleted list.
// Everything except a successfully executed DELETE is kept.
func (o Outcome) Deleted() bool {
	return o == OutcomeDelete
}

// Decision is the evaluated outcome for a single server
type Decision struct {
	ServerID   string  `json:"server_id"`
	ServerName string  `json:"server_name"`
	Outcome    Outcome `json:"outcome"`
	Reason     string  `json:"reason"`
}

// String renders the decision as a report line, e.g.
// "fleet-mac-07: idle 25.0h, deleted"
func (d Decision) String() string {
	return fmt.Sprintf("%s: %s", d.ServerName, d.Reason)
}

// StringList is a string slice stored as JSONB
type StringList []string

// Value implements driver.Valuer for database serialization
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for database deserialization
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// RunReport is the structured result of one reaper run. Deleted and Kept
// hold human-readable report lines in inventory order; every server present
// in the inventory at run time appears in exactly one of the two lists.
type RunReport struct {
	Deleted   StringList `json:"deleted"`
	Kept      StringList `json:"kept"`
	Timestamp time.Time  `json:"timestamp"`
	Decisions []Decision `json:"decisions,omitempty"`
}

// NewRunReport creates an empty report stamped with the given time
func NewRunReport(now time.Time) *RunReport {
	return &RunReport{
		Deleted:   StringList{},
		Kept:      StringList{},
		Timestamp: now,
	}
}

// Record appends a decision to the report, routing its report line to the
// deleted or kept list
func (r *RunReport) Record(d Decision) {
	r.Decisions = append(r.Decisions, d)
	if d.Outcome.Deleted() {
		r.Deleted = append(r.Deleted, d.String())
	} else {
		r.Kept = append(r.Kept, d.String())
	}
}

// RunRecord is a persisted run report row
type RunRecord struct {
	ID         string     `db:"id" json:"id"`
	PolicyName string     `db:"policy_name" json:"policy_name"`
	Zone       string     `db:"zone" json:"zone"`
	Deleted    StringList `db:"deleted" json:"deleted"`
	Kept       StringList `db:"kept" json:"kept"`
	RunAt      time.Time  `db:"run_at" json:"run_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
