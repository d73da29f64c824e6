package compose

import (
	"io"
	"mime/multipart"
)

// Form field names of the send request.
const (
	FieldSender      = "email"
	FieldSecret      = "app_password"
	FieldRecipients  = "recipients"
	FieldSubject     = "subject"
	FieldBody        = "body"
	FieldResume      = "resume"
	FieldAttachments = "attachments"
)

// MaxAttachmentBytes is the default ceiling for the total size of all attachments.
const MaxAttachmentBytes int64 = 10 << 20

// Limits bounds what a single request may carry.
type Limits struct {
	MaxAttachmentBytes int64 `envconfig:"MAILER_MAX_ATTACHMENT_BYTES" default:"10485760"`
}

// DefaultLimits returns limits with MaxAttachmentBytes set.
func DefaultLimits() Limits {
	return Limits{MaxAttachmentBytes: MaxAttachmentBytes}
}

// Request is one send invocation as received from the caller.
type Request struct {
	Sender        string
	Secret        string
	RecipientsRaw string
	Subject       string
	Body          string
	Resume        *File
	Extras        []*File
}

// File is an uploaded file part.
type File struct {
	Filename string
	Size     int64
	open     func() (io.ReadCloser, error)
}

// NewFile creates a File whose content is produced by open.
func NewFile(filename string, size int64, open func() (io.ReadCloser, error)) *File {
	return &File{Filename: filename, Size: size, open: open}
}

// FileFromHeader wraps a multipart file header.
func FileFromHeader(fh *multipart.FileHeader) *File {
	return NewFile(fh.Filename, fh.Size, func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

// Open opens the file content for reading.
func (f *File) Open() (io.ReadCloser, error) {
	return f.open()
}

// FromForm builds a Request from a parsed multipart form.
// An unnamed empty resume part, as browsers send for an untouched file
// input, is treated as absent.
func FromForm(form *multipart.Form) Request {
	req := Request{
		Sender:        formValue(form, FieldSender),
		Secret:        formValue(form, FieldSecret),
		RecipientsRaw: formValue(form, FieldRecipients),
		Subject:       formValue(form, FieldSubject),
		Body:          formValue(form, FieldBody),
	}

	if form == nil {
		return req
	}

	if files := form.File[FieldResume]; len(files) > 0 {
		if fh := files[0]; fh.Size > 0 || fh.Filename != "" {
			req.Resume = FileFromHeader(fh)
		}
	}
	for _, fh := range form.File[FieldAttachments] {
		req.Extras = append(req.Extras, FileFromHeader(fh))
	}

	return req
}

func formValue(form *multipart.Form, key string) string {
	if form == nil {
		return ""
	}
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
