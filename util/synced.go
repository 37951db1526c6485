package util

import "sync/atomic"

// SafeCounter is safe to use concurrently.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeInt creates a new SafeCounter.
func NewSafeInt() *SafeCounter {
	return &SafeCounter{}
}

// Increment increments the counter's value and returns the new value.
func (sc *SafeCounter) Increment() int {
	return int(sc.value.Add(1))
}

// Add adds a delta to the counter's value and returns the new value.
func (sc *SafeCounter) Add(delta int) int {
	return int(sc.value.Add(int64(delta)))
}

// Value returns the current value of the counter.
func (sc *SafeCounter) Value() int {
	return int(sc.value.Load())
}

// SafeFlag is a boolean shared between goroutines, used as a cooperative cancellation signal.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeBool creates a new SafeFlag set to false.
func NewSafeBool() *SafeFlag {
	return &SafeFlag{}
}

// Set sets the value of the flag and returns the new value.
func (sf *SafeFlag) Set(newValue bool) bool {
	sf.value.Store(newValue)
	return newValue
}

// Value returns the current value of the flag.
func (sf *SafeFlag) Value() bool {
	return sf.value.Load()
}
