package compose

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/mail"
)

// Default file names for unnamed uploads.
const (
	DefaultResumeName     = "resume.pdf"
	DefaultAttachmentName = "attachment"
)

// Assemble reads the resume and the extra files into memory.
// The resume goes first, extras follow in submission order; zero-byte
// extras are skipped. A read error on any file fails the whole call.
func Assemble(ctx context.Context, resume *File, extras []*File) ([]mail.Attachment, error) {
	attachments := make([]mail.Attachment, 0, len(extras)+1)

	if resume != nil {
		a, err := readAttachment(ctx, resume, DefaultResumeName)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}

	for _, f := range extras {
		if f == nil || f.Size <= 0 {
			continue
		}
		a, err := readAttachment(ctx, f, DefaultAttachmentName)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}

	return attachments, nil
}

func readAttachment(ctx context.Context, f *File, defaultName string) (mail.Attachment, error) {
	name := f.Filename
	if name == "" {
		name = defaultName
	}

	if err := ctx.Err(); err != nil {
		return mail.Attachment{}, &AttachmentReadError{Filename: name, Err: err}
	}

	content, err := readAll(f)
	if err != nil {
		return mail.Attachment{}, &AttachmentReadError{Filename: name, Err: err}
	}

	return mail.Attachment{
		Filename:    name,
		ContentType: mimetype.Detect(content).String(),
		Content:     content,
	}, nil
}

func readAll(f *File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return content, nil
}
