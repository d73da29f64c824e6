package compose

// Validate checks a request before anything is read or sent:
// required fields first, then the attachment size budget, then the
// presence of at least one attachment. It returns the first failed check.
func Validate(req Request, limits Limits) error {
	if req.Sender == "" || req.Secret == "" || req.RecipientsRaw == "" || req.Subject == "" || req.Body == "" {
		return ErrMissingFields
	}

	ceiling := limits.MaxAttachmentBytes
	if ceiling <= 0 {
		ceiling = MaxAttachmentBytes
	}
	if TotalSize(req) > ceiling {
		return ErrAttachmentTooLarge
	}

	if req.Resume == nil && len(req.Extras) == 0 {
		return ErrResumeMissing
	}

	return nil
}

// TotalSize returns the declared size of all files in the request.
func TotalSize(req Request) int64 {
	var total int64
	if req.Resume != nil {
		total += req.Resume.Size
	}
	for _, f := range req.Extras {
		if f != nil {
			total += f.Size
		}
	}
	return total
}
