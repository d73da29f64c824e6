package rabbitmq

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrConnectionClosed = errors.New("connection is closed manually")

// RetryPolicy tells how long to wait before reconnect attempt i, or to give up.
type RetryPolicy interface {
	TryNum(i int) (duration time.Duration, stop bool)
}

// DialerOptions set dialer params. Zero values fall back to defaults.
type DialerOptions struct {
	RetryPolicy    RetryPolicy
	Logger         *slog.Logger
	DialTimeout    time.Duration
	ConnectionName string
}

// Dialer keeps one AMQP connection alive. After a broker-side drop it dials
// again in the background following RetryPolicy until Close is called.
type Dialer struct {
	uri    string
	retry  RetryPolicy
	log    *slog.Logger
	config amqp.Config

	mx      sync.Mutex
	conn    *amqp.Connection
	stopped bool
	stop    chan struct{}
}

func NewDialer(uri string, options *DialerOptions) *Dialer {
	var opts DialerOptions
	if options != nil {
		opts = *options
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RetryPolicy == nil {
		opts.RetryPolicy = NewDefaultMaxInterval()
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	props := amqp.NewConnectionProperties()
	if opts.ConnectionName != "" {
		props.SetClientConnectionName(opts.ConnectionName)
	}

	return &Dialer{
		uri:   uri,
		retry: opts.RetryPolicy,
		log:   opts.Logger.WithGroup("rabbitmq"),
		config: amqp.Config{
			Dial:       amqp.DefaultDial(opts.DialTimeout),
			Properties: props,
		},
		stop: make(chan struct{}),
	}
}

// Connect dials the broker once and starts watching the connection.
func (d *Dialer) Connect() error {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.stopped {
		return ErrConnectionClosed
	}

	conn, err := amqp.DialConfig(d.uri, d.config)
	if err != nil {
		return errors.Wrap(err, "failed to dial")
	}
	d.conn = conn
	d.log.Debug("connected")

	go d.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// Channel opens a channel on the current connection.
func (d *Dialer) Channel() (*amqp.Channel, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.stopped || d.conn == nil || d.conn.IsClosed() {
		return nil, ErrConnectionClosed
	}

	ch, err := d.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	return ch, nil
}

// Close stops reconnection and closes the connection. Safe to call twice.
func (d *Dialer) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()

	if d.stopped {
		return nil
	}
	d.stopped = true
	close(d.stop)

	conn := d.conn
	d.conn = nil
	if conn == nil || conn.IsClosed() {
		return nil
	}
	return errors.Wrap(conn.Close(), "failed to close RabbitMQ connection")
}

// watch waits for the connection to drop and redials.
// A graceful close delivers no error and ends the watch.
func (d *Dialer) watch(closed <-chan *amqp.Error) {
	amqpErr, ok := <-closed
	if !ok || amqpErr == nil {
		return
	}
	d.log.Warn("connection lost", "error", amqpErr.Error())

	for i := 0; ; i++ {
		err := d.Connect()
		if err == nil || errors.Is(err, ErrConnectionClosed) {
			return
		}

		wait, giveUp := d.retry.TryNum(i)
		if giveUp {
			d.log.Error("giving up reconnecting", "attempts", i+1, "error", err.Error())
			return
		}
		d.log.Warn("reconnect failed", "attempt", i+1, "retry_in", wait.String(), "error", err.Error())

		select {
		case <-time.After(wait):
		case <-d.stop:
			return
		}
	}
}
