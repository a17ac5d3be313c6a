package health

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Result is the outcome of one named check.
type Result struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report aggregates every check run by a Checker.
type Report struct {
	Healthy bool     `json:"healthy"`
	Checks  []Result `json:"checks"`
}

type namedCheck struct {
	name  string
	check Check
}

// Checker runs registered dependency checks in parallel.
type Checker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	timeout time.Duration
}

// NewChecker creates a checker whose checks each get timeout to complete.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{timeout: timeout}
}

// Add registers a check under name. Results keep registration order.
func (c *Checker) Add(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, namedCheck{name: name, check: check})
}

// Run executes every check and reports whether all passed.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, nc := range checks {
		wg.Add(1)
		go func(i int, nc namedCheck) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			results[i] = Result{Name: nc.name, OK: true}
			if err := nc.check(checkCtx); err != nil {
				results[i].OK = false
				results[i].Error = err.Error()
			}
		}(i, nc)
	}
	wg.Wait()

	report := Report{Healthy: true, Checks: results}
	for _, r := range results {
		if !r.OK {
			report.Healthy = false
			break
		}
	}
	return report
}

// BinaryCheck verifies that an executable can be found.
func BinaryCheck(path string) Check {
	return func(context.Context) error {
		if _, err := exec.LookPath(path); err != nil {
			return fmt.Errorf("%s not found: %w", path, err)
		}
		return nil
	}
}
