package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPMailer_Send(t *testing.T) {
	t.Run("builds message and uses configured relay", func(t *testing.T) {
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.mercamio.test", Username: "bot@mercamio.test", Password: "secret"})

		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte
		var gotAuth smtp.Auth
		mailer.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
			return nil
		}

		if err := mailer.Send(context.Background(), "staff@mercamio.test", "Nuevo pedido", "linea 1\nlinea 2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotAddr != "smtp.mercamio.test:587" {
			t.Errorf("expected default port, got %s", gotAddr)
		}
		if gotAuth == nil {
			t.Error("expected auth with username configured")
		}
		if gotFrom != "bot@mercamio.test" {
			t.Errorf("expected from to default to username, got %s", gotFrom)
		}
		if len(gotTo) != 1 || gotTo[0] != "staff@mercamio.test" {
			t.Errorf("unexpected recipients: %v", gotTo)
		}
		msg := string(gotMsg)
		if !strings.Contains(msg, "Subject: Nuevo pedido\r\n") {
			t.Errorf("missing subject header: %q", msg)
		}
		if !strings.HasSuffix(msg, "\r\n\r\nlinea 1\r\nlinea 2") {
			t.Errorf("unexpected body: %q", msg)
		}
	})

	t.Run("wraps relay errors", func(t *testing.T) {
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.mercamio.test", Port: "25", From: "bot@mercamio.test"})
		relayErr := errors.New("554 rejected")
		mailer.send = func(string, smtp.Auth, string, []string, []byte) error { return relayErr }

		err := mailer.Send(context.Background(), "staff@mercamio.test", "s", "b")
		if !errors.Is(err, relayErr) {
			t.Errorf("expected wrapped relay error, got %v", err)
		}
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.mercamio.test"})
		mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
			t.Error("send must not be called")
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := mailer.Send(ctx, "staff@mercamio.test", "s", "b"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
