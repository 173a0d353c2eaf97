// Package audit records structured resolution outcome events. Recording is
// fire and forget: a sink must never block or fail the resolution that
// produced the event
package audit

import (
	"time"

	"drsgate/internal/platform/logger"

	"github.com/google/uuid"
)

// Outcome is a terminal resolution state
type Outcome string

// Outcomes
const (
	OutcomeResolutionSucceeded Outcome = "resolution-succeeded"
	OutcomeResolutionFailed    Outcome = "resolution-failed"
	OutcomeSignedURLIssued     Outcome = "signed-url-issued"
)

// Event is one resolution outcome
type Event struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	DrsURL      string    `json:"drsUrl"`
	ClientIP    string    `json:"clientIp,omitempty"`
	AuthType    string    `json:"authType,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	ServiceName string    `json:"serviceName,omitempty"`
	At          time.Time `json:"at"`
}

// Sink accepts events
type Sink interface {
	Record(ev Event)
}

// NewEvent stamps id and time onto a partially filled event
func NewEvent(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return ev
}

// LogSink writes events to the structured log
type LogSink struct {
	log logger.Logger
}

// NewLogSink builds a LogSink
func NewLogSink() *LogSink {
	return &LogSink{log: *logger.Named("audit")}
}

// Record implements Sink
func (s *LogSink) Record(ev Event) {
	ev = NewEvent(ev)
	s.log.Info().
		Str("id", ev.ID).
		Str("provider", ev.Provider).
		Str("drs_url", ev.DrsURL).
		Str("client_ip", ev.ClientIP).
		Str("auth_type", ev.AuthType).
		Str("outcome", string(ev.Outcome)).
		Str("service_name", ev.ServiceName).
		Time("at", ev.At).
		Msg("resolution outcome")
}

// AsyncSink decouples producers from a possibly slow inner sink with a
// bounded buffer. When the buffer is full the event is dropped; losing an
// audit record is preferable to stalling a resolution
type AsyncSink struct {
	inner Sink
	ch    chan Event
	done  chan struct{}
	log   logger.Logger
}

// NewAsyncSink starts the forwarding worker
func NewAsyncSink(inner Sink, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncSink{
		inner: inner,
		ch:    make(chan Event, buffer),
		done:  make(chan struct{}),
		log:   *logger.Named("audit"),
	}
	go s.run()
	return s
}

// Record implements Sink without ever blocking
func (s *AsyncSink) Record(ev Event) {
	select {
	case s.ch <- NewEvent(ev):
	default:
		s.log.Warn().Str("drs_url", ev.DrsURL).Msg("audit buffer full, event dropped")
	}
}

// Close drains buffered events and stops the worker
func (s *AsyncSink) Close() {
	close(s.ch)
	<-s.done
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for ev := range s.ch {
		s.inner.Record(ev)
	}
}
