package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// DefaultTripThreshold is the number of consecutive failed requests against
// one host that opens its breaker.
const DefaultTripThreshold = 5

// Breakers holds one circuit breaker per upstream host. A Fetcher routes every
// request attempt, retries included, through the breaker of the target host.
type Breakers struct {
	threshold int64
	breakers  map[string]*circuit.Breaker
	mu        sync.RWMutex
}

// NewBreakers creates an empty breaker set that trips a host after threshold
// consecutive failures.
func NewBreakers(threshold int64) *Breakers {
	if threshold <= 0 {
		threshold = DefaultTripThreshold
	}
	return &Breakers{
		threshold: threshold,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates the circuit breaker for host.
func (b *Breakers) getBreaker(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, exists := b.breakers[host]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ConsecutiveTripFunc(b.threshold),
	})

	b.breakers[host] = breaker
	return breaker
}

// call runs one request attempt against rawURL's host. An open breaker fails
// fast with ErrUpstreamDown without running fn.
func (b *Breakers) call(rawURL string, fn func() error) error {
	host := extractHost(rawURL)

	err := b.getBreaker(host).Call(fn, 0)
	if errors.Is(err, circuit.ErrBreakerOpen) {
		return &BreakerOpenError{Host: host}
	}
	return err
}

// BreakerState returns "open" or "closed" for every host seen so far.
func (b *Breakers) BreakerState() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range b.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// BreakerOpenError is returned when a host's breaker rejects a request.
type BreakerOpenError struct {
	Host string
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Host)
}

func (e *BreakerOpenError) Unwrap() error {
	return ErrUpstreamDown
}

// extractHost returns the breaker grouping key for a URL.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
