package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Service   string                 `json:"service,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Critical  bool      `json:"critical"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type registered struct {
	checker  Checker
	critical bool
}

// CheckerRegistry runs its checkers concurrently. A failing critical checker
// makes the service unhealthy; a failing optional one only degrades it.
type CheckerRegistry struct {
	service  string
	checkers []registered
}

func NewCheckerRegistry(service string) *CheckerRegistry {
	return &CheckerRegistry{service: service}
}

func (r *CheckerRegistry) RegisterCritical(checker Checker) {
	r.checkers = append(r.checkers, registered{checker: checker, critical: true})
}

func (r *CheckerRegistry) RegisterOptional(checker Checker) {
	r.checkers = append(r.checkers, registered{checker: checker})
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult, len(r.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, rc := range r.checkers {
		wg.Add(1)
		go func(rc registered) {
			defer wg.Done()
			err := rc.checker.Check(ctx)

			result := CheckResult{Status: StatusHealthy, Critical: rc.critical, Timestamp: time.Now()}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Message = err.Error()
			}

			mu.Lock()
			results[rc.checker.Name()] = result
			mu.Unlock()
		}(rc)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, res := range results {
		if res.Status == StatusHealthy {
			continue
		}
		if res.Critical {
			overall = StatusUnhealthy
			break
		}
		overall = StatusDegraded
	}

	return Health{
		Status:    overall,
		Service:   r.service,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// Handler serves the registry. Only an unhealthy status answers 503.
func (r *CheckerRegistry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := r.Check(c.Request.Context())
		code := http.StatusOK
		if h.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, h)
	}
}
