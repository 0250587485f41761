// Package assistant runs the product recommendation chat against a streaming
// generative endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
)

// Apology is the only fragment yielded when a turn fails twice
const Apology = "Mi scusi, I am having trouble connecting to the styling service right now."

// ErrStreamFailure wraps transport errors. Send never returns it; it is
// logged and handled by the retry.
var ErrStreamFailure = errors.New("assistant stream failure")

// Transport opens conversations on the generative endpoint
type Transport interface {
	Open(ctx context.Context, systemInstruction string) (Conversation, error)
}

// Conversation is one multi-turn context on the endpoint. SendStream yields
// text deltas; a non-nil error ends the stream.
type Conversation interface {
	SendStream(ctx context.Context, message string) iter.Seq2[string, error]
}

type State int

const (
	StateUninitialized State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "uninitialized"
}

// Session is one conversation with the assistant. The conversation is opened
// lazily from the catalog passed to the first Send and reused for later turns
// until a failure discards it. Turns on one session run one at a time.
type Session struct {
	transport Transport
	persona   Persona
	logger    *logrus.Entry

	mu   sync.Mutex
	conv Conversation
}

func NewSession(transport Transport, persona Persona, logger *logrus.Logger) *Session {
	return &Session{
		transport: transport,
		persona:   persona,
		logger:    logger.WithField("component", "assistant"),
	}
}

// State reports whether the session currently holds an open conversation
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv != nil {
		return StateActive
	}
	return StateUninitialized
}

// Send streams the reply to message. The sequence is lazy and can be ranged
// over once; nothing is sent until it is. A transport failure reopens the
// conversation and retries the message once. While the retry repeats the
// text already yielded it is held back and only the continuation follows; a
// retry that says something different is yielded in full after a paragraph
// break. If the retry fails too the sequence yields Apology and ends.
func (s *Session) Send(ctx context.Context, message string, catalog []models.Product) iter.Seq[string] {
	var consumed atomic.Bool
	return func(yield func(string) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.turn(ctx, message, catalog, yield)
	}
}

func (s *Session) turn(ctx context.Context, message string, catalog []models.Product, yield func(string) bool) {
	var delivered strings.Builder
	emit := func(fragment string) bool {
		delivered.WriteString(fragment)
		return yield(fragment)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		if attempt == 2 {
			metrics.AssistantRetries.Inc()
		}

		stopped, err := s.attempt(ctx, message, catalog, &resume{sent: delivered.String()}, emit)
		if err == nil || stopped {
			return
		}

		s.conv = nil
		s.logger.WithError(err).WithField("attempt", attempt).Warn("Assistant stream failed")
		if ctx.Err() != nil {
			return
		}
	}

	metrics.AssistantApologies.Inc()
	yield(Apology)
}

// attempt runs one turn on the current conversation, opening one if needed.
// Fragments pass through r so text delivered by an earlier attempt is not
// emitted again. stopped reports that the consumer ended the range.
func (s *Session) attempt(ctx context.Context, message string, catalog []models.Product, r *resume, emit func(string) bool) (stopped bool, err error) {
	if s.conv == nil {
		conv, err := s.transport.Open(ctx, BuildSystemInstruction(s.persona, catalog))
		if err != nil {
			return false, fmt.Errorf("%w: open conversation: %w", ErrStreamFailure, err)
		}
		s.conv = conv
	}

	for fragment, err := range s.conv.SendStream(ctx, message) {
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrStreamFailure, err)
		}
		if fragment = r.next(fragment); fragment == "" {
			continue
		}
		if !emit(fragment) {
			return true, nil
		}
	}
	return false, nil
}

// resume matches a retried reply against the text already sent. Output is
// held back while it repeats that text and released once it goes past it.
// On the first byte that differs everything held back is released behind a
// paragraph break, so nothing is cut out of either reply.
type resume struct {
	sent    string
	pending strings.Builder
	done    bool
}

func (r *resume) next(fragment string) string {
	if r.done || r.sent == "" {
		return fragment
	}
	r.pending.WriteString(fragment)
	got := r.pending.String()

	n := min(len(got), len(r.sent))
	if got[:n] != r.sent[:n] {
		r.done = true
		return "\n\n" + got
	}
	if len(got) < len(r.sent) {
		return ""
	}
	r.done = true
	return got[len(r.sent):]
}
