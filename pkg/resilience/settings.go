package resilience

import "time"

const (
	defaultBreakerInterval  = time.Minute
	defaultBreakerTimeout   = 30 * time.Second
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
)

// BreakerSettings describes a breaker that opens after failures consecutive
// errors and lets a trial call through after openFor. Zero values take the defaults.
func BreakerSettings(name string, failures int, openFor time.Duration) Settings {
	s := Settings{Name: name, Timeout: openFor}
	if failures > 0 {
		s.FailureThreshold = uint32(failures)
	}
	return s.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.Interval <= 0 {
		s.Interval = defaultBreakerInterval
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultBreakerTimeout
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = defaultFailureThreshold
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = defaultSuccessThreshold
	}
	return s
}
