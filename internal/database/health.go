package database

import (
	"context"
	"time"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of a database health probe.
type HealthStatus struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	ResponseTime time.Duration          `json:"response_time"`
	Errors       []string               `json:"errors,omitempty"`
	Details      map[string]interface{} `json:"details"`
}

// Health pings the database and reports pool utilisation. Degraded
// means reachable but with the pool exhausted.
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Details:   make(map[string]interface{}),
	}

	start := time.Now()
	err := m.Ping(ctx)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
		return status
	}

	stats := m.Stats()
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["max_open_connections"] = stats.MaxOpenConnections

	status.Status = StatusHealthy
	if stats.MaxOpenConnections > 0 &&
		stats.OpenConnections >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool exhausted")
	}

	return status
}
