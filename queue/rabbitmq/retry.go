package rabbitmq

import (
	"time"
)

// Default values
const (
	DefaultRetryInterval             = time.Millisecond * 100
	DefaultConnIntervalMultiplicator = 2
	DefaultMaxInterval               = time.Minute * 5
)

// ConstantInterval retries forever with the same pause.
type ConstantInterval struct {
	interval time.Duration
}

func NewConstantInterval(interval time.Duration) *ConstantInterval {
	return &ConstantInterval{interval: interval}
}

func (c *ConstantInterval) TryNum(int) (duration time.Duration, stop bool) {
	return c.interval, false
}

// MaxInterval grows the pause linearly and gives up once it exceeds max.
type MaxInterval struct {
	base          time.Duration
	max           time.Duration
	multiplicator int
}

// NewDefaultMaxInterval returns MaxInterval with default values.
func NewDefaultMaxInterval() *MaxInterval {
	return &MaxInterval{
		base:          DefaultRetryInterval,
		max:           DefaultMaxInterval,
		multiplicator: DefaultConnIntervalMultiplicator,
	}
}

// NewMaxInterval creates a new MaxInterval. Zero arguments fall back to defaults.
func NewMaxInterval(baseInterval, maxInterval time.Duration, intervalMultiplicator int) *MaxInterval {
	p := NewDefaultMaxInterval()
	if baseInterval > 0 {
		p.base = baseInterval
	}
	if maxInterval > 0 {
		p.max = maxInterval
	}
	if intervalMultiplicator > 0 {
		p.multiplicator = intervalMultiplicator
	}
	return p
}

// TryNum for use in for loop. tryNum int is number of iteration.
func (interval *MaxInterval) TryNum(tryNum int) (time.Duration, bool) {
	retryInterval := interval.base * time.Duration((tryNum+1)*interval.multiplicator)
	if retryInterval > interval.max {
		return 0, true
	}

	return retryInterval, false
}
