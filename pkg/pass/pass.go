// Package pass defines the input to the pass artifact pipeline.
//
// An [Input] is an immutable snapshot of one registration joined with its
// event: everything the layout engine and card renderer need, and nothing
// they would have to look up. It is built fresh for every render.
package pass

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // event zones must resolve on hosts without a zoneinfo database

	"github.com/matzehuels/eventpass/pkg/code"
	"github.com/matzehuels/eventpass/pkg/errors"
)

// Placeholder is shown in place of empty optional values.
const Placeholder = "—"

// DefaultTimezone is the zone event dates are displayed in.
const DefaultTimezone = "Asia/Kolkata"

// Date layouts.
const (
	// EventDateLayout renders "1 March 2025, 02:30 pm".
	EventDateLayout = "2 January 2006, 03:04 pm"

	// RegisteredLayout renders the footer timestamp, always in UTC.
	RegisteredLayout = "2006-01-02 15:04:05"
)

// Input is the data rendered onto a pass.
type Input struct {
	FirstName    string    `json:"firstName" toml:"first_name"`
	Surname      string    `json:"surname" toml:"surname"`
	Email        string    `json:"email" toml:"email"`
	MobileNumber string    `json:"mobileNumber,omitempty" toml:"mobile_number"`
	EventName    string    `json:"eventName" toml:"event_name"`
	EventStart   time.Time `json:"eventStart" toml:"event_start"`
	EventEnd     time.Time `json:"eventEnd" toml:"event_end"`
	Venue        string    `json:"venue,omitempty" toml:"venue"`
	Code         string    `json:"code" toml:"code"`
	RegisteredAt time.Time `json:"registeredAt" toml:"registered_at"`
}

// Validate checks the fields the renderer cannot do without.
func (in Input) Validate() error {
	if err := errors.ValidateField("first name", in.FirstName); err != nil {
		return err
	}
	if err := errors.ValidateField("surname", in.Surname); err != nil {
		return err
	}
	if err := errors.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := errors.ValidateMobile(in.MobileNumber); err != nil {
		return err
	}
	// The title wraps and is clamped by layout, so any length is accepted.
	if strings.TrimSpace(in.EventName) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "event name is required")
	}
	if err := errors.ValidateOptionalField("venue", in.Venue); err != nil {
		return err
	}
	if !code.Valid(in.Code) {
		return errors.New(errors.ErrCodeInvalidCode, "invalid registration code %q", in.Code)
	}
	if !in.EventStart.IsZero() && !in.EventEnd.IsZero() && in.EventEnd.Before(in.EventStart) {
		return errors.New(errors.ErrCodeInvalidInput, "event ends before it starts")
	}
	return nil
}

// FullName joins first name and surname.
func (in Input) FullName() string {
	return strings.TrimSpace(in.FirstName + " " + in.Surname)
}

// Filename returns the attachment name for a pass artifact, e.g. "event-pass-F4VJEUHOA707.pdf".
func Filename(code, ext string) string {
	return fmt.Sprintf("event-pass-%s.%s", code, strings.TrimPrefix(ext, "."))
}

// Formatter renders dates and optional values for display.
type Formatter struct {
	loc *time.Location
}

// NewFormatter returns a formatter for the named IANA zone.
// An empty name selects DefaultTimezone.
func NewFormatter(zone string) (Formatter, error) {
	if zone == "" {
		zone = DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Formatter{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load timezone %q", zone)
	}
	return Formatter{loc: loc}, nil
}

// DefaultFormatter formats in DefaultTimezone.
func DefaultFormatter() Formatter {
	f, err := NewFormatter(DefaultTimezone)
	if err != nil {
		// tzdata is embedded, so the default zone always resolves.
		panic(err)
	}
	return f
}

// EventDate formats an event boundary, or Placeholder for the zero time.
func (f Formatter) EventDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	loc := f.loc
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(EventDateLayout)
}

// Registered formats the registration timestamp in UTC.
func (f Formatter) Registered(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.UTC().Format(RegisteredLayout)
}

// Value returns s, or Placeholder when s is blank.
func Value(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Location returns the display zone.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}
