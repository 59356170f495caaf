// Package registration records attendees, allocates their codes and drives
// pass delivery and check-in.
//
// A registration is written first and its pass is produced afterwards on a
// detached goroutine (see [pipeline.Runner.Dispatch]), so a failing renderer
// or mail transport never loses a registration.
package registration

import (
	"strings"
	"time"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
)

// Status is the participation state of a registration.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAttended   Status = "attended"
)

// Storage errors. Stores return these unwrapped so callers can compare
// with errors.Is from either the standard library or pkg/errors.
var (
	ErrNotFound          = errors.New(errors.ErrCodeNotFound, "registration not found")
	ErrAlreadyRegistered = errors.New(errors.ErrCodeConflict, "already registered for this event")
	ErrDuplicateCode     = errors.New(errors.ErrCodeConflict, "registration code already allocated")
)

// Event is the part of an event a registration snapshots.
type Event struct {
	ID    string    `json:"eventId" bson:"eventId" toml:"id"`
	Name  string    `json:"eventName" bson:"eventName" toml:"name"`
	Start time.Time `json:"eventStartDate" bson:"eventStartDate" toml:"start"`
	End   time.Time `json:"eventEndDate" bson:"eventEndDate" toml:"end"`
	Venue string    `json:"venue" bson:"venue" toml:"venue"`
}

// Registration is one attendee's registration for one event.
type Registration struct {
	ID   string `json:"id" bson:"_id"`
	Code string `json:"uniqueCode" bson:"uniqueCode"`

	Event Event `json:"event" bson:"event"`

	FirstName    string `json:"firstName" bson:"firstName"`
	Surname      string `json:"surname" bson:"surname"`
	Email        string `json:"email" bson:"email"`
	MobileNumber string `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	Organization string `json:"organization,omitempty" bson:"organization,omitempty"`
	Designation  string `json:"designation,omitempty" bson:"designation,omitempty"`

	Status     Status     `json:"participationStatus" bson:"participationStatus"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	AttendedAt *time.Time `json:"attendedAt,omitempty" bson:"attendedAt,omitempty"`
}

// Input returns the pass input for r.
func (r *Registration) Input() pass.Input {
	return pass.Input{
		FirstName:    r.FirstName,
		Surname:      r.Surname,
		Email:        r.Email,
		MobileNumber: r.MobileNumber,
		EventName:    r.Event.Name,
		EventStart:   r.Event.Start,
		EventEnd:     r.Event.End,
		Venue:        r.Event.Venue,
		Code:         r.Code,
		RegisteredAt: r.CreatedAt,
	}
}

// clone returns a deep copy so stores never share mutable state with callers.
func (r *Registration) clone() *Registration {
	c := *r
	if r.AttendedAt != nil {
		t := *r.AttendedAt
		c.AttendedAt = &t
	}
	return &c
}

// Request is a registration submitted by an attendee.
type Request struct {
	Event Event `json:"event"`

	FirstName    string `json:"firstName"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Organization string `json:"organization,omitempty"`
	Designation  string `json:"designation,omitempty"`

	AgreedToPrivacy bool `json:"agreedToPrivacy"`
}

// Normalize trims every field and lower-cases the email.
func (q *Request) Normalize() {
	q.FirstName = strings.TrimSpace(q.FirstName)
	q.Surname = strings.TrimSpace(q.Surname)
	q.Email = NormalizeEmail(q.Email)
	q.MobileNumber = strings.TrimSpace(q.MobileNumber)
	q.Organization = strings.TrimSpace(q.Organization)
	q.Designation = strings.TrimSpace(q.Designation)
}

// Validate checks a normalized request.
func (q Request) Validate() error {
	if err := errors.ValidateField("event id", q.Event.ID); err != nil {
		return err
	}
	if err := errors.ValidateField("first name", q.FirstName); err != nil {
		return err
	}
	if err := errors.ValidateField("surname", q.Surname); err != nil {
		return err
	}
	if err := errors.ValidateEmail(q.Email); err != nil {
		return err
	}
	if err := errors.ValidateMobile(q.MobileNumber); err != nil {
		return err
	}
	if err := errors.ValidateOptionalField("organization", q.Organization); err != nil {
		return err
	}
	if err := errors.ValidateOptionalField("designation", q.Designation); err != nil {
		return err
	}
	if !q.AgreedToPrivacy {
		return errors.New(errors.ErrCodeInvalidInput, "the privacy policy must be accepted")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address for duplicate detection.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
