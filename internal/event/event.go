// Package event carries domain events from usecases to background consumers.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrBusClosed = errors.New("event bus closed")
	ErrQueueFull = errors.New("event queue full")
)

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

type Handler func(ctx context.Context, msg *Message)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

type Subscriber interface {
	// QueueSubscribe delivers each message on subject to one member of queue.
	QueueSubscribe(subject, queue string, handler Handler) error
}

type Bus interface {
	Publisher
	Subscriber
	// Close stops accepting events and waits for in-flight handlers.
	Close() error
}

// Subjects
const (
	OTPIssued         = "otp.issued"
	ClientRegistered  = "client.registered"
	EnrollmentCreated = "enrollment.created"
)

// OTPIssuedEvent carries the plaintext code; it is only ever consumed by the mailer.
type OTPIssuedEvent struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Code          string `json:"code"`
	ExpireMinutes int    `json:"expire_minutes"`
}

type ClientRegisteredEvent struct {
	ClientID  string `json:"client_id"`
	FirstName string `json:"first_name"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
}

type EnrollmentCreatedEvent struct {
	EnrollmentID   int64  `json:"enrollment_id"`
	ClientID       string `json:"client_id"`
	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	ProgramName    string `json:"program_name"`
	ProgramCode    string `json:"program_code"`
	EnrollmentDate string `json:"enrollment_date"` // YYYY-MM-DD
}
