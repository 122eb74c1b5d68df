package mail

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSendPasswordReset(t *testing.T) {
	d := &fakeDialer{}
	m := &Mailer{from: "Farmacia <no-reply@farmacia.com>", dialer: d}

	require.NoError(t, m.SendPasswordReset(context.Background(), "ana@example.com", "Ana", "http://front/reset-password-cli?token=abc"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, d.sent[0].GetHeader("To"))
	subject := d.sent[0].GetHeader("Subject")
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, "Restablecer contraseña", decoded)
}

func TestSendInvoiceAttachesPDF(t *testing.T) {
	d := &fakeDialer{}
	m := &Mailer{from: "f@x.com", dialer: d}

	require.NoError(t, m.SendInvoice(context.Background(), "ana@example.com", "F-1", []byte("%PDF-1.3 test")))
	raw := render(t, d.sent[0])
	assert.Contains(t, raw, `filename="factura-F-1.pdf"`)
	assert.True(t, strings.Contains(raw, "application/pdf"))
}

func TestSendPropagatesErrors(t *testing.T) {
	d := &fakeDialer{err: errors.New("auth failed")}
	m := &Mailer{from: "f@x.com", dialer: d}
	assert.Error(t, m.SendInvoice(context.Background(), "a@b.com", "F-1", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendPasswordReset(ctx, "a@b.com", "A", "l"), context.Canceled)
}
