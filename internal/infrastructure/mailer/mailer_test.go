package mailer

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"health-program-api/config"

	"github.com/sirupsen/logrus"
)

func TestNewSelectsProvider(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cases := []struct {
		name    string
		cfg     config.EmailConfig
		wantErr bool
		check   func(Mailer) bool
	}{
		{"default is log", config.EmailConfig{}, false, func(m Mailer) bool { _, ok := m.(*LogMailer); return ok }},
		{"smtp", config.EmailConfig{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 1025}, false, func(m Mailer) bool { _, ok := m.(*SMTPMailer); return ok }},
		{"smtp without host", config.EmailConfig{Provider: "smtp"}, true, nil},
		{"mailersend", config.EmailConfig{Provider: "mailersend", MailerSendKey: "key"}, false, func(m Mailer) bool { _, ok := m.(*MailerSendMailer); return ok }},
		{"mailersend without key", config.EmailConfig{Provider: "mailersend"}, true, nil},
		{"unknown", config.EmailConfig{Provider: "pigeon"}, true, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.cfg, log)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.check(m) {
				t.Fatalf("unexpected mailer type %T", m)
			}
		})
	}
}

func TestSMTPBuildMIME(t *testing.T) {
	s := NewSMTPMailer("localhost", 1025, "noreply@health.local", "Health System", "", "", false)
	body := string(s.buildMIME("jane@example.com", Message{
		Subject: "Welcome to the Health System",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	}))

	for _, want := range []string{
		"From: Health System <noreply@health.local>\r\n",
		"To: jane@example.com\r\n",
		"Subject: Welcome to the Health System\r\n",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
		"<p>hello</p>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("MIME body missing %q", want)
		}
	}
}

// fakeSMTPServer accepts one session and records the DATA payload.
func fakeSMTPServer(ln net.Listener, data chan<- string) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	reply := func(line string) {
		rw.WriteString(line + "\r\n")
		rw.Flush()
	}

	reply("220 localhost ESMTP")
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250 8BITMIME")
		case cmd == "DATA":
			reply("354 end with .")
			var body strings.Builder
			for {
				l, err := rw.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			data <- body.String()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func listenLocal(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestSMTPSend(t *testing.T) {
	ln, port := listenLocal(t)
	data := make(chan string, 1)
	go fakeSMTPServer(ln, data)

	s := NewSMTPMailer("127.0.0.1", port, "noreply@health.local", "Health System", "", "", false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Send(ctx, Message{ToEmail: "jane@example.com", Subject: "Hi", Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case body := <-data:
		if !strings.Contains(body, "To: jane@example.com") {
			t.Errorf("unexpected DATA payload: %q", body)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received DATA")
	}
}

func TestSMTPSendHonoursContextDeadline(t *testing.T) {
	ln, port := listenLocal(t)
	// accept and never greet
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn)
	}()

	s := NewSMTPMailer("127.0.0.1", port, "noreply@health.local", "", "", "", false)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Send(ctx, Message{ToEmail: "jane@example.com", Subject: "Hi", Text: "hello"})
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error from stalled server")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked past its context deadline")
	}
}
