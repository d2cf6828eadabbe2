package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"orcamentos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending quotations as PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configurado reports whether an SMTP host was provided.
func (m *Mailer) Configurado() bool { return m.host != "" }

// EnviarComAnexo sends body as plain text with one in-memory attachment.
func (m *Mailer) EnviarComAnexo(to, assunto, corpo, nomeArquivo string, anexo []byte) error {
	e := m.montar(to, assunto, corpo)
	if len(anexo) > 0 {
		if _, err := e.Attach(bytes.NewReader(anexo), nomeArquivo, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

func (m *Mailer) montar(to, assunto, corpo string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = assunto
	e.Text = []byte(corpo)
	return e
}
