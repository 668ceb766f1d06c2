// Package health reports the explorer's readiness: registry reachability
// and freshness of the capacity store.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the component is operational but with issues.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy Status = "unhealthy"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response represents the health check response.
type Response struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
}

// Pinger checks connectivity to the registry.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreState exposes the store freshness.
type StoreState interface {
	Loaded() bool
	LastRefresh() time.Time
}

// Checker performs health checks.
type Checker struct {
	pinger     Pinger
	store      StoreState
	staleAfter time.Duration
	startTime  time.Time
	version    string
	timeout    time.Duration
	now        func() time.Time
	mu         sync.RWMutex
}

// NewChecker creates a new health checker. Data older than staleAfter
// reports the store as degraded; zero disables the staleness check.
func NewChecker(pinger Pinger, store StoreState, staleAfter time.Duration, version string) *Checker {
	return &Checker{
		pinger:     pinger,
		store:      store,
		staleAfter: staleAfter,
		startTime:  time.Now(),
		version:    version,
		timeout:    5 * time.Second,
		now:        time.Now,
	}
}

// SetTimeout sets the timeout for health checks.
func (c *Checker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// Check performs all health checks and returns the aggregated response.
func (c *Checker) Check(ctx context.Context) *Response {
	c.mu.RLock()
	timeout := c.timeout
	c.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"registry": c.checkRegistry(checkCtx),
		"store":    c.checkStore(),
	}

	overallStatus := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		}
		if comp.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}

	return &Response{
		Status:     overallStatus,
		Components: components,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
	}
}

// checkRegistry reports the registry as degraded rather than unhealthy
// when it is unreachable: the last pulled snapshot is still served.
func (c *Checker) checkRegistry(ctx context.Context) ComponentStatus {
	if c.pinger == nil {
		return ComponentStatus{Status: StatusDegraded, Message: "registry checker not configured"}
	}
	if err := c.pinger.Ping(ctx); err != nil {
		return ComponentStatus{Status: StatusDegraded, Message: "registry ping failed: " + err.Error()}
	}
	return ComponentStatus{Status: StatusHealthy, Message: "reachable"}
}

func (c *Checker) checkStore() ComponentStatus {
	if c.store == nil {
		return ComponentStatus{Status: StatusUnhealthy, Message: "store not configured"}
	}
	if !c.store.Loaded() {
		return ComponentStatus{Status: StatusUnhealthy, Message: "registry data not loaded yet"}
	}
	if last := c.store.LastRefresh(); c.staleAfter > 0 && !last.IsZero() {
		age := c.now().Sub(last)
		if age > c.staleAfter {
			return ComponentStatus{
				Status:  StatusDegraded,
				Message: "last refresh " + age.Round(time.Second).String() + " ago",
			}
		}
	}
	return ComponentStatus{Status: StatusHealthy, Message: "loaded"}
}

// Handler returns an HTTP handler for health checks.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		switch response.Status {
		case StatusHealthy, StatusDegraded:
			w.WriteHeader(http.StatusOK)
		case StatusUnhealthy:
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(response)
	}
}
