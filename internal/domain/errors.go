package domain

import "fmt"

// ConnectionError means the database connection could not be established.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to database %s: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError means a shortage query failed after a connection existed.
type QueryError struct {
	Report string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("run %s query: %v", e.Report, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NotifyError means the webhook rejected or never received a message.
type NotifyError struct {
	StatusCode int
	Err        error
}

func (e *NotifyError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("webhook delivery: %v", e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
