package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name             string
	MaxRequests      int
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold int
	OnStateChange    func(name string, from, to string)
}

type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	threshold := settings.FailureThreshold
	if threshold <= 0 {
		threshold = 5
	}
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: uint32(max(settings.MaxRequests, 1)),
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
	}
	if settings.OnStateChange != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			settings.OnStateChange(name, from.String(), to.String())
		}
	}
	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := cb.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State returns "closed", "half-open" or "open".
func (cb *CircuitBreaker) State() string {
	return cb.cb.State().String()
}
