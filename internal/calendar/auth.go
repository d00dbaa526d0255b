package calendar

import (
	"time"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// Record statuses.
const (
	StatusConnecting = "connecting"
	StatusConnected  = "connected"
	StatusError      = "error"
)

// Auth is the calendar connection state. It is one of Disconnected,
// Connecting, Connected or Failed.
type Auth interface {
	auth()
}

// Disconnected means no calendar account is linked.
type Disconnected struct{}

// Connecting means a sync is in progress for Email.
type Connecting struct {
	Email string
}

// Connected carries the credentials of a linked account.
type Connected struct {
	Email      string
	Token      string
	ExpiresAt  time.Time
	LastSynced *time.Time
}

// Failed means the last sync for Email did not complete.
type Failed struct {
	Email   string
	Message string
}

func (Disconnected) auth() {}
func (Connecting) auth()   {}
func (Connected) auth()    {}
func (Failed) auth()       {}

// IsConnected reports whether events may be fetched with a.
func IsConnected(a Auth) bool {
	_, ok := a.(Connected)
	return ok
}

// ToRecord converts a to its persisted form. Disconnected maps to nil.
func ToRecord(a Auth) *domain.CalendarRecord {
	switch v := a.(type) {
	case Connecting:
		return &domain.CalendarRecord{Status: StatusConnecting, AccountEmail: v.Email}
	case Connected:
		rec := &domain.CalendarRecord{Status: StatusConnected, AccountEmail: v.Email}
		if v.LastSynced != nil {
			t := *v.LastSynced
			rec.LastSynced = &t
		}
		return rec
	case Failed:
		return &domain.CalendarRecord{Status: StatusError, AccountEmail: v.Email, Error: v.Message}
	default:
		return nil
	}
}

// FromRecord restores the connection state from its persisted form. The
// record never holds credentials, so a connected record yields a
// Connected value without a token.
func FromRecord(rec *domain.CalendarRecord) Auth {
	if rec == nil {
		return Disconnected{}
	}
	switch rec.Status {
	case StatusConnecting:
		return Connecting{Email: rec.AccountEmail}
	case StatusConnected:
		c := Connected{Email: rec.AccountEmail}
		if rec.LastSynced != nil {
			t := *rec.LastSynced
			c.LastSynced = &t
		}
		return c
	case StatusError:
		return Failed{Email: rec.AccountEmail, Message: rec.Error}
	default:
		return Disconnected{}
	}
}

// Describe returns a one-line status label.
func Describe(a Auth) string {
	switch v := a.(type) {
	case Connecting:
		return "Connecting to " + v.Email + "…"
	case Connected:
		return "Synced with " + v.Email
	case Failed:
		if v.Message == "" {
			return "Connection error"
		}
		return v.Message
	default:
		return "Not connected"
	}
}
