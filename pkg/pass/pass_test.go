package pass

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/eventpass/pkg/errors"
)

func sampleInput() Input {
	return Input{
		FirstName:    "Ada",
		Surname:      "Lovelace",
		Email:        "ada@example.com",
		MobileNumber: "+91 98765 43210",
		EventName:    "Annual Tech Summit 2025",
		EventStart:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		EventEnd:     time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		Venue:        "Hall A",
		Code:         "F4VJEUHOA707",
		RegisteredAt: time.Date(2025, 2, 10, 8, 15, 30, 0, time.UTC),
	}
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		code   errors.Code
	}{
		{"valid", func(*Input) {}, ""},
		{"no venue", func(in *Input) { in.Venue = "" }, ""},
		{"no mobile", func(in *Input) { in.MobileNumber = "" }, ""},
		{"missing first name", func(in *Input) { in.FirstName = "" }, errors.ErrCodeInvalidInput},
		{"missing surname", func(in *Input) { in.Surname = " " }, errors.ErrCodeInvalidInput},
		{"bad email", func(in *Input) { in.Email = "nope" }, errors.ErrCodeInvalidEmail},
		{"missing event", func(in *Input) { in.EventName = "" }, errors.ErrCodeInvalidInput},
		{"blank event", func(in *Input) { in.EventName = " \t\n" }, errors.ErrCodeInvalidInput},
		{"long event", func(in *Input) { in.EventName = strings.Repeat("Summit ", 300) }, ""},
		{"event with tab and newline", func(in *Input) { in.EventName = "Annual\tTech\nSummit" }, ""},
		{"bad code", func(in *Input) { in.Code = "abc" }, errors.ErrCodeInvalidCode},
		{"reversed dates", func(in *Input) { in.EventEnd = in.EventStart.Add(-time.Hour) }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)
			err := in.Validate()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct{ ext, want string }{
		{"pdf", "event-pass-F4VJEUHOA707.pdf"},
		{".png", "event-pass-F4VJEUHOA707.png"},
	}
	for _, tt := range tests {
		if got := Filename("F4VJEUHOA707", tt.ext); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestFormatter(t *testing.T) {
	f := DefaultFormatter()

	// 09:00 UTC is 14:30 in Asia/Kolkata.
	if got := f.EventDate(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)); got != "1 March 2025, 02:30 pm" {
		t.Errorf("EventDate() = %q", got)
	}
	if got := f.EventDate(time.Time{}); got != Placeholder {
		t.Errorf("EventDate(zero) = %q, want placeholder", got)
	}
	if got := f.Registered(time.Date(2025, 2, 10, 8, 15, 30, 0, time.FixedZone("x", 3600))); got != "2025-02-10 07:15:30" {
		t.Errorf("Registered() = %q", got)
	}
}

func TestNewFormatterUnknownZone(t *testing.T) {
	if _, err := NewFormatter("Mars/Olympus"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewFormatter() error = %v, want INVALID_CONFIG", err)
	}
}

func TestValue(t *testing.T) {
	if Value("") != Placeholder || Value("  ") != Placeholder {
		t.Error("blank values should render as placeholder")
	}
	if Value("Hall A") != "Hall A" {
		t.Error("non-blank values should pass through")
	}
}

func TestFullName(t *testing.T) {
	if got := sampleInput().FullName(); got != "Ada Lovelace" {
		t.Errorf("FullName() = %q", got)
	}
}
