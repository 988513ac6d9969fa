package service

import (
	"context"
	"fmt"
	"time"

	"health-program-api/internal/event"
	"health-program-api/internal/infrastructure/mailer"

	"github.com/sirupsen/logrus"
)

const NotificationQueue = "notification-dispatcher"

const (
	defaultSendAttempts = 3
	defaultSendBackoff  = 2 * time.Second
	sendTimeout         = 15 * time.Second
)

// NotificationService turns domain events into emails. Delivery is
// best-effort: after the last failed attempt the event is dropped and logged.
type NotificationService struct {
	mailer   mailer.Mailer
	log      *logrus.Logger
	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
}

func NewNotificationService(m mailer.Mailer, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		mailer:   m,
		log:      log,
		attempts: defaultSendAttempts,
		backoff:  defaultSendBackoff,
		sleep:    time.Sleep,
	}
}

// Subscribe registers the dispatcher on every notification subject.
func (s *NotificationService) Subscribe(sub event.Subscriber) error {
	handlers := map[string]event.Handler{
		event.OTPIssued:         s.handleOTPIssued,
		event.ClientRegistered:  s.handleClientRegistered,
		event.EnrollmentCreated: s.handleEnrollmentCreated,
	}
	for subject, handler := range handlers {
		if err := sub.QueueSubscribe(subject, NotificationQueue, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}
	return nil
}

func (s *NotificationService) handleOTPIssued(ctx context.Context, msg *event.Message) {
	var ev event.OTPIssuedEvent
	if err := msg.Decode(&ev); err != nil {
		s.log.Warnf("Failed to decode %s event: %+v", msg.Subject, err)
		return
	}
	name := ev.FullName
	if name == "" {
		name = ev.Username
	}
	s.send(ctx, otpEmail, ev.Email, name, ev)
}

func (s *NotificationService) handleClientRegistered(ctx context.Context, msg *event.Message) {
	var ev event.ClientRegisteredEvent
	if err := msg.Decode(&ev); err != nil {
		s.log.Warnf("Failed to decode %s event: %+v", msg.Subject, err)
		return
	}
	s.send(ctx, welcomeEmail, ev.Email, ev.FullName, ev)
}

func (s *NotificationService) handleEnrollmentCreated(ctx context.Context, msg *event.Message) {
	var ev event.EnrollmentCreatedEvent
	if err := msg.Decode(&ev); err != nil {
		s.log.Warnf("Failed to decode %s event: %+v", msg.Subject, err)
		return
	}
	s.send(ctx, enrollmentEmail, ev.ClientEmail, ev.ClientName, ev)
}

func (s *NotificationService) send(ctx context.Context, tmpl emailTemplate, toEmail, toName string, data any) {
	if toEmail == "" {
		s.log.Warn("Skipping notification without recipient email")
		return
	}

	subject, text, html, err := tmpl.render(data)
	if err != nil {
		s.log.Warnf("Failed to render email: %+v", err)
		return
	}

	msg := mailer.Message{
		ToEmail: toEmail,
		ToName:  toName,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = s.mailer.Send(sendCtx, msg)
		cancel()
		if err == nil {
			s.log.Infof("Email %q sent to %s", subject, toEmail)
			return
		}

		s.log.Warnf("Failed to send email %q to %s (attempt %d/%d): %+v", subject, toEmail, attempt, s.attempts, err)
		if attempt < s.attempts {
			s.sleep(time.Duration(attempt) * s.backoff)
		}
	}

	s.log.Errorf("Giving up on email %q to %s", subject, toEmail)
}
