package registration

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/eventpass/pkg/code"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pipeline"
)

// maxCreateAttempts bounds retries when a code is allocated between the
// availability check and the insert.
const maxCreateAttempts = 3

// Service implements registration, lookup and check-in.
type Service struct {
	store     Store
	runner    *pipeline.Runner
	deliverer pipeline.Deliverer
	passOpts  pipeline.Options
	codes     *code.Generator
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for creation and attendance stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGenerator sets the code generator.
func WithGenerator(g *code.Generator) Option {
	return func(s *Service) { s.codes = g }
}

// WithPassOptions sets the render options for delivered and downloaded passes.
func WithPassOptions(o pipeline.Options) Option {
	return func(s *Service) { s.passOpts = o }
}

// WithDeliverer sets where confirmation messages go. Without one, passes
// are rendered on demand only.
func WithDeliverer(d pipeline.Deliverer) Option {
	return func(s *Service) { s.deliverer = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service over store. A nil runner gets an uncached one.
func NewService(store Store, runner *pipeline.Runner, opts ...Option) *Service {
	s := &Service{
		store: store,
		codes: code.NewGenerator(nil),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.runner = runner
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Register validates q, allocates a unique code and stores the registration.
// Pass delivery is dispatched afterwards and never fails the registration.
func (s *Service) Register(ctx context.Context, q Request) (*Registration, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	switch _, err := s.store.ByEventEmail(ctx, q.Event.ID, q.Email); {
	case err == nil:
		return nil, ErrAlreadyRegistered
	case !stderrors.Is(err, ErrNotFound):
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "check existing registration")
	}

	reg := &Registration{
		ID:           uuid.NewString(),
		Event:        q.Event,
		FirstName:    q.FirstName,
		Surname:      q.Surname,
		Email:        q.Email,
		MobileNumber: q.MobileNumber,
		Organization: q.Organization,
		Designation:  q.Designation,
		Status:       StatusRegistered,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	var err error
	for range maxCreateAttempts {
		reg.Code, err = code.Unique(ctx, s.codes, s.store.CodeExists, 0)
		if err != nil {
			return nil, err
		}
		err = s.store.Create(ctx, reg)
		if !stderrors.Is(err, ErrDuplicateCode) {
			break
		}
		s.logger.Debug("code allocated concurrently, retrying", "code", reg.Code)
	}
	switch {
	case stderrors.Is(err, ErrAlreadyRegistered):
		return nil, err
	case stderrors.Is(err, ErrDuplicateCode):
		return nil, errors.Wrap(errors.ErrCodeCodeExhausted, err, "allocate registration code")
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store registration")
	}

	s.logger.Info("registration created", "code", reg.Code, "event", reg.Event.ID, "email", reg.Email)

	if s.deliverer != nil {
		s.runner.Dispatch(ctx, reg.Input(), s.passOpts, s.deliverer)
	}
	return reg, nil
}

// Lookup returns the registration for a user-entered code.
func (s *Service) Lookup(ctx context.Context, raw string) (*Registration, error) {
	c := code.Normalize(raw)
	if c == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "code is required")
	}
	if !code.Valid(c) {
		return nil, errors.New(errors.ErrCodeInvalidCode, "invalid registration code %q", c)
	}
	return s.store.ByCode(ctx, c)
}

// CheckIn marks the registration for raw as attended. The boolean is false
// when the attendee had already been checked in; of concurrent scans of one
// code exactly one reports true.
func (s *Service) CheckIn(ctx context.Context, raw string) (*Registration, bool, error) {
	c := code.Normalize(raw)
	if c == "" {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "code is required")
	}
	if !code.Valid(c) {
		return nil, false, errors.New(errors.ErrCodeInvalidCode, "invalid registration code %q", c)
	}
	reg, first, err := s.store.MarkAttended(ctx, c, s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, false, err
	}
	if first {
		s.logger.Info("checked in", "code", reg.Code, "name", reg.Input().FullName())
	} else {
		s.logger.Warn("already checked in", "code", reg.Code, "at", reg.AttendedAt)
	}
	return reg, first, nil
}

// Pass renders the pass for raw in the given formats.
func (s *Service) Pass(ctx context.Context, raw string, formats ...string) (*pipeline.Result, error) {
	reg, err := s.Lookup(ctx, raw)
	if err != nil {
		return nil, err
	}
	opts := s.passOpts
	opts.Formats = formats
	return s.runner.Render(ctx, reg.Input(), opts)
}

// Resend renders and delivers the pass for raw synchronously.
func (s *Service) Resend(ctx context.Context, raw string) error {
	if s.deliverer == nil {
		return errors.New(errors.ErrCodeUnsupported, "no deliverer configured")
	}
	reg, err := s.Lookup(ctx, raw)
	if err != nil {
		return err
	}
	return s.runner.Deliver(ctx, reg.Input(), s.passOpts, s.deliverer)
}

// List returns the registrations of eventID, newest first.
func (s *Service) List(ctx context.Context, eventID string) ([]*Registration, error) {
	return s.store.List(ctx, eventID)
}
