package smtp

import (
	"io"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/pure-golang/resume-mailer/mail"
)

// buildMessage composes a multipart/mixed message: a text/plain body
// followed by base64 encoded attachments.
func buildMessage(email mail.Email) *gomail.Message {
	msg := gomail.NewMessage(gomail.SetCharset("UTF-8"))

	msg.SetAddressHeader("From", email.From.Address, email.From.Name)

	to := make([]string, 0, len(email.To))
	for _, addr := range email.To {
		to = append(to, msg.FormatAddress(addr.Address, addr.Name))
	}
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetDateHeader("Date", time.Now())

	// Add custom headers
	for k, v := range email.Headers {
		msg.SetHeader(k, v)
	}

	msg.SetBody("text/plain", email.Body)

	for _, a := range email.Attachments {
		msg.Attach(a.Filename, attachmentSettings(a)...)
	}

	return msg
}

func attachmentSettings(a mail.Attachment) []gomail.FileSetting {
	content := a.Content
	settings := []gomail.FileSetting{
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}),
	}

	if a.ContentType != "" {
		name := strings.ReplaceAll(a.Filename, `"`, "")
		settings = append(settings, gomail.SetHeader(map[string][]string{
			"Content-Type": {a.ContentType + `; name="` + name + `"`},
		}))
	}

	return settings
}
