package shared

import "time"

// Clock abstracts time for warehouse scheduling decisions so they can be
// tested against fixed instants
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// Sleep pauses execution for the given duration
	Sleep(d time.Duration)
}

// RealClock uses actual system time
type RealClock struct{}

// NewRealClock creates a clock that uses system time
func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// MockClock provides controllable time for testing
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a mock clock pinned to the given time
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Now()
	}
	return &MockClock{CurrentTime: t}
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Sleep advances the mock time instead of blocking
func (c *MockClock) Sleep(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Advance moves the mock time forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// SetTime pins the mock clock to a specific time
func (c *MockClock) SetTime(t time.Time) {
	c.CurrentTime = t
}
