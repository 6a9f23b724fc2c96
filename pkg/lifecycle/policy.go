package lifecycle

import "time"

// Policy bounds the approval window and executor retry behavior.
type Policy struct {
	// DecisionWindow is how long a submitted item waits for a human
	// decision before the sweeper expires it.
	DecisionWindow time.Duration

	// MaxAttempts is the total execution attempt budget per item,
	// counting the first attempt.
	MaxAttempts int

	// BaseBackoff is the delay before the second attempt; each further
	// attempt doubles it.
	BaseBackoff time.Duration

	// ExecutionTimeout bounds a single executor invocation.
	ExecutionTimeout time.Duration
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		DecisionWindow:   24 * time.Hour,
		MaxAttempts:      3,
		BaseBackoff:      2 * time.Second,
		ExecutionTimeout: 30 * time.Second,
	}
}

// backoffFor returns the delay before the given attempt number. The
// first attempt (1) has no delay.
func (p Policy) backoffFor(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delay := p.BaseBackoff
	for i := 2; i < attempt; i++ {
		delay *= 2
	}

	return delay
}
