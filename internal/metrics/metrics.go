// Package metrics keeps the in-process counters reported by the health endpoint.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// HTTP counts served requests by outcome.
type HTTP struct {
	Requests     Counter
	ClientErrors Counter
	ServerErrors Counter
	started      *Timer
}

func NewHTTP() *HTTP {
	return &HTTP{started: StartTimer()}
}

func (m *HTTP) Observe(status int) {
	m.Requests.Inc()
	switch {
	case status >= 500:
		m.ServerErrors.Inc()
	case status >= 400:
		m.ClientErrors.Inc()
	}
}

type Snapshot struct {
	Requests      uint64 `json:"requests"`
	ClientErrors  uint64 `json:"clientErrors"`
	ServerErrors  uint64 `json:"serverErrors"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (m *HTTP) Snapshot() Snapshot {
	return Snapshot{
		Requests:      m.Requests.Load(),
		ClientErrors:  m.ClientErrors.Load(),
		ServerErrors:  m.ServerErrors.Load(),
		UptimeSeconds: int64(m.started.Duration().Seconds()),
	}
}
