package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/observability"
	"github.com/matzehuels/eventpass/pkg/pass"
)

// Attachment is one file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a pass delivery.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Deliverer sends messages. Mail transport lives outside this module;
// implementations adapt it.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, msg Message) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, msg Message) error { return f(ctx, msg) }

// LogDeliverer logs messages instead of sending them.
type LogDeliverer struct {
	Logger *log.Logger
}

// Deliver logs the recipient and attachment names.
func (d LogDeliverer) Deliver(_ context.Context, msg Message) error {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = fmt.Sprintf("%s (%d bytes)", a.Filename, len(a.Data))
	}
	logger.Info("pass delivered", "to", msg.To, "subject", msg.Subject, "attachments", names)
	return nil
}

// Attachments returns the files to send for a result: the PDF when present,
// otherwise the PNG.
func Attachments(res *Result) []Attachment {
	for _, f := range []string{FormatPDF, FormatPNG} {
		if data, ok := res.Artifacts[f]; ok {
			return []Attachment{{Filename: res.Filename(f), ContentType: ContentTypes[f], Data: data}}
		}
	}
	return nil
}

// NewMessage builds the confirmation message for in.
func NewMessage(in pass.Input, res *Result) Message {
	return Message{
		To:      in.Email,
		Subject: fmt.Sprintf("Your pass for %s", in.EventName),
		Body: fmt.Sprintf("Hi %s,\n\nYou're registered for %s. Your registration code is %s.\nShow the attached pass at the entrance.\n",
			in.FirstName, in.EventName, res.Code),
		Attachments: Attachments(res),
	}
}

// Deliver renders the pass and hands it to d.
func (r *Runner) Deliver(ctx context.Context, in pass.Input, opts Options, d Deliverer) error {
	if opts.Formats == nil {
		opts.Formats = []string{FormatPDF}
	}
	res, err := r.Render(ctx, in, opts)
	if err != nil {
		return err
	}
	msg := NewMessage(in, res)
	return stage(ctx, res.Code, observability.StageDeliver, func() error {
		return d.Deliver(ctx, msg)
	})
}

// Dispatch runs Deliver in the background, detached from ctx's cancellation
// and bounded by DispatchTimeout. The caller's registration is already
// committed: failures and panics are logged, never propagated. The returned
// channel yields the outcome once and may be ignored. After Close has begun,
// Dispatch refuses new work.
func (r *Runner) Dispatch(ctx context.Context, in pass.Input, opts Options, d Deliverer) <-chan error {
	done := make(chan error, 1)
	timeout := r.DispatchTimeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	logger := r.logger(opts)

	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		logger.Warn("pass dispatch after close", "code", in.Code)
		done <- errors.New(errors.ErrCodeInternal, "runner is closed")
		return done
	}
	r.inflight.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.inflight.Done()
		defer func() {
			if p := recover(); p != nil {
				logger.Error("pass delivery panicked", "code", in.Code, "panic", p, "stack", string(debug.Stack()))
				done <- errors.New(errors.ErrCodeInternal, "pass delivery panicked: %v", p)
			}
		}()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		start := time.Now()
		err := r.Deliver(ctx, in, opts, d)
		if err != nil {
			logger.Error("pass delivery failed", "code", in.Code, "email", in.Email, "err", err)
		} else {
			logger.Debug("pass dispatched", "code", in.Code, "duration", time.Since(start))
		}
		done <- err
	}()
	return done
}
