// Package notify delivers verification and two-factor codes to users over
// SMTP. Delivery is fire-and-forget from the auth flow's perspective:
// callers log failures and move on.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Mailer sends plain HTML mail through an SMTP relay. It speaks STARTTLS
// when the server offers it and authenticates only when credentials are set,
// which keeps local catch-all servers (MailHog and friends) working.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string

	// InsecureSkipVerify disables TLS certificate verification. Only for
	// local development relays with self-signed certificates.
	InsecureSkipVerify bool
}

// NewMailer constructs a Mailer for the given relay and sender address.
func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// SendVerificationCode emails the registration verification code.
func (m *Mailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		`<h2>Verify your email</h2><p>Hi %s,</p><p>Your LINKT verification code is <b>%s</b>.</p><p>The code is valid for 5 minutes.</p>`,
		name, code)
	return m.send(ctx, to, "Your LINKT verification code", body)
}

// Send2FACode emails the login second-factor code.
func (m *Mailer) Send2FACode(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		`<h2>Login confirmation</h2><p>Hi %s,</p><p>Your LINKT login code is <b>%s</b>.</p><p>The code is valid for 5 minutes.</p>`,
		name, code)
	return m.send(ctx, to, "Your LINKT login code", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	var sb strings.Builder
	sb.WriteString("From: " + m.from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if err := c.Hello("localhost"); err != nil {
		return err
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		cfg := &tls.Config{
			ServerName:         m.host,
			InsecureSkipVerify: m.InsecureSkipVerify,
		}
		if err := c.StartTLS(cfg); err != nil {
			return err
		}
		if err := c.Hello("localhost"); err != nil {
			return err
		}
	}

	if m.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.user, m.pass, m.host)
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(sb.String())); err != nil {
		return err
	}
	return w.Close()
}
