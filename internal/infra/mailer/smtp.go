package mailer

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/mail.v2"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// SMTPMailer sends report mails over STARTTLS. Credentials are injected at
// construction; nothing is read from ambient globals.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	return &SMTPMailer{dialer: d, from: from}
}

// SendReport attaches the PDF and sends. Dial/auth failures surface as
// ErrMailAuth, everything after a successful dial as ErrMailSend.
func (m *SMTPMailer) SendReport(ctx context.Context, rm domain.ReportMail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", rm.To...)
	msg.SetHeader("Subject", rm.Subject)
	msg.SetBody("text/plain", rm.Body)
	msg.Attach(rm.PDFPath, gomail.Rename(rm.AttachmentName))

	sender, err := m.dialer.Dial()
	if err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %v", domain.ErrMailAuth, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrMailSend, err)
	}
	defer sender.Close()

	if err := gomail.Send(sender, msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailSend, err)
	}
	return nil
}

// isAuthError sniffs SMTP auth rejections (535 and friends) out of the
// dialer error so callers can tell bad credentials from a broken transport.
func isAuthError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "535") ||
		strings.Contains(s, "auth") ||
		strings.Contains(s, "username and password not accepted")
}
