package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Links are the frontend URLs tokens get appended to before being mailed out.
type Links struct {
	ActivationURL string
	RecoveryURL   string
}

type Mail struct {
	address  string
	password string
	host     string
	port     string
	links    Links
}

func New(address string, password string, host string, port string, links Links) *Mail {
	return &Mail{
		address:  address,
		password: password,
		host:     host,
		port:     port,
		links:    links,
	}
}

func (m *Mail) SendActivationToken(token string, to string) error {
	link := fmt.Sprintf("%s?token=%s", m.links.ActivationURL, token)
	body := fmt.Sprintf("Welcome! Activate your account by following this link: %s", link)
	return m.send(to, "Activate your account", body)
}

func (m *Mail) SendRecoveryToken(token string, to string) error {
	link := fmt.Sprintf("%s?token=%s", m.links.RecoveryURL, token)
	body := fmt.Sprintf("A password reset was requested for your account. Follow this link to proceed: %s", link)
	return m.send(to, "Reset your password", body)
}

func (m *Mail) send(to string, subject string, body string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.address),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.address, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.address, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	return nil
}
