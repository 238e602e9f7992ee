package page

import "time"

// settings is the per-descriptor tier of the override chain. Unset
// fields fall through to the global defaults.
type settings struct {
	index   int // -1 means find_element semantics
	timeout *time.Duration
	reraise *bool
	cache   *bool
	remark  string
}

// Option configures an element descriptor at construction.
type Option func(*settings)

// Index switches the descriptor to find-elements-then-index semantics.
func Index(i int) Option {
	return func(s *settings) {
		s.index = i
	}
}

// Timeout sets the descriptor's wait timeout tier.
func Timeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = &d
	}
}

// Reraise sets the descriptor's timeout behavior tier.
func Reraise(r bool) Option {
	return func(s *settings) {
		s.reraise = &r
	}
}

// Cache sets the descriptor's handle cache tier. It has no effect on
// Elements, which never cache.
func Cache(c bool) Option {
	return func(s *settings) {
		s.cache = &c
	}
}

// Remark sets a custom identification string used in logs and timeout
// errors. The default is derived from the locator.
func Remark(r string) Option {
	return func(s *settings) {
		s.remark = r
	}
}

func applyOptions(opts []Option) settings {
	s := settings{index: -1}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
