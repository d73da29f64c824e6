package smtp

import "time"

// TLSMode selects how the connection to the submission server is secured.
type TLSMode string

const (
	TLSImplicit TLSMode = "implicit" // TLS from the first byte, port 465
	TLSStartTLS TLSMode = "starttls" // plain connection upgraded with STARTTLS, port 587
	TLSNone     TLSMode = "none"     // no TLS, local relays and tests only
)

// Config contains SMTP connection parameters.
// Credentials are not part of the config: every session authenticates
// with the account that requested it.
type Config struct {
	Host        string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port        int           `envconfig:"SMTP_PORT" default:"465"`
	TLSMode     TLSMode       `envconfig:"SMTP_TLS_MODE" default:"implicit"`
	Insecure    bool          `envconfig:"SMTP_INSECURE" default:"false"` // skip certificate verification
	LocalName   string        `envconfig:"SMTP_LOCAL_NAME"`               // EHLO name, "localhost" if empty
	DialTimeout time.Duration `envconfig:"SMTP_DIAL_TIMEOUT" default:"10s"`
	IOTimeout   time.Duration `envconfig:"SMTP_IO_TIMEOUT" default:"60s"` // deadline for one SMTP transaction
}
