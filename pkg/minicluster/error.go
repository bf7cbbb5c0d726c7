package minicluster

import "fmt"

// ExhaustedError is returned by WaitForApp when an application never reports
// healthy within the polling budget. It carries enough to diagnose which app
// failed and what the endpoint last answered.
type ExhaustedError struct {
	App      string
	Port     int
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to start %s on port %d after %d attempts: %s", e.App, e.Port, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
