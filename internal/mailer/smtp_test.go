package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	s := NewSMTP(Config{Host: "smtp.example.com", Port: "2525", FromName: "DevCamper", FromEmail: "noreply@devcamper.io"})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		if a != nil {
			t.Error("auth set without credentials")
		}
		return nil
	}

	if err := s.Send(context.Background(), "jane@example.com", "Password reset token", "line one\nline two"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || gotFrom != "noreply@devcamper.io" || len(gotTo) != 1 || gotTo[0] != "jane@example.com" {
		t.Errorf("envelope = %s %s %v", gotAddr, gotFrom, gotTo)
	}
	for _, want := range []string{
		"From: DevCamper <noreply@devcamper.io>\r\n",
		"Subject: Password reset token\r\n",
		"\r\n\r\nline one\r\nline two",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message lacks %q:\n%s", want, gotMsg)
		}
	}
}

func TestSendWrapsFailure(t *testing.T) {
	cause := errors.New("connection refused")
	s := NewSMTP(Config{Host: "smtp.example.com", Port: "25", Username: "u", Password: "p"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return cause }

	if err := s.Send(context.Background(), "jane@example.com", "s", "b"); !errors.Is(err, cause) {
		t.Errorf("Send() error = %v, want wrapped cause", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, "jane@example.com", "s", "b"); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() with cancelled ctx = %v", err)
	}
}
