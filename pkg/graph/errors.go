package graph

import (
	"errors"
	"fmt"
)

// ErrQueryExecution is matched by every failure to execute a subgraph query.
var ErrQueryExecution = errors.New("query execution failed")

// ErrorClass represents a classification of query failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport failures (DNS, refused, timeout).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassGraphQL represents a 200 response carrying GraphQL errors.
	ErrorClassGraphQL ErrorClass = "graphql"

	// ErrorClassDecode represents a response body that is not a GraphQL response.
	ErrorClassDecode ErrorClass = "decode"
)

// QueryError represents a failed subgraph query with additional context.
type QueryError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("subgraph %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("subgraph %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports every QueryError as an ErrQueryExecution.
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryExecution
}

// classifyStatus maps a non-2xx HTTP status onto an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	default:
		return ErrorClassDecode
	}
}
