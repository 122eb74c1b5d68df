// Package mail delivers transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"gopkg.in/gomail.v2"
)

// Attachment is an in-memory file sent along with a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends messages through one SMTP account.
type Mailer struct {
	from   string
	dialer sender
}

func NewMailer(host string, port int, user, key, from string) *Mailer {
	return &Mailer{from: from, dialer: gomail.NewDialer(host, port, user, key)}
}

func (m *Mailer) message(to, subject, body string, attachments ...Attachment) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(data))
				return err
			}),
		)
	}
	return msg
}

func (m *Mailer) send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(msg)
}

// SendPasswordReset mails the reset link to the account owner.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	body := fmt.Sprintf(`<p>Hola %s,</p>
<p>Recibimos una solicitud para restablecer tu contraseña. El enlace vence en 15 minutos.</p>
<p><a href="%s">Restablecer contraseña</a></p>
<p>Si no la solicitaste, ignora este mensaje.</p>`, html.EscapeString(name), html.EscapeString(link))
	return m.send(ctx, m.message(to, "Restablecer contraseña", body))
}

// SendInvoice mails an invoice PDF to the client.
func (m *Mailer) SendInvoice(ctx context.Context, to, number string, pdf []byte) error {
	body := fmt.Sprintf(`<p>Gracias por su compra.</p><p>Adjuntamos la factura %s.</p>`, html.EscapeString(number))
	return m.send(ctx, m.message(to, "Factura "+number, body, Attachment{
		Name:        "factura-" + number + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	}))
}
