package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
)

// Mailer sends the one transactional message this system has.
type Mailer interface {
	SendVerification(to, link string) error
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type SMTPMailer struct {
	cfg  Config
	tmpl *template.Template
}

const verificationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
  <p>Welcome to the Contacts API.</p>
  <p>Please verify your email address by clicking the link below:</p>
  <p><a href="{{.Link}}">Verify email</a></p>
  <p>The link is valid for 24 hours. If you did not register, ignore this message.</p>
</body>
</html>`

func New(cfg Config) (*SMTPMailer, error) {
	tmpl, err := template.New("verification").Parse(verificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("mail: parse template: %w", err)
	}
	return &SMTPMailer{cfg: cfg, tmpl: tmpl}, nil
}

func (m *SMTPMailer) SendVerification(to, link string) error {
	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		return fmt.Errorf("mail: render verification: %w", err)
	}
	return m.send(to, "Email Verification", body.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}
