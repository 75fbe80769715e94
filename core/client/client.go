// Package client coordinates rendering and execution of pipeline queries.
// It renders a composed query chain, hands the text to an injected Executor
// for transport, and surrounds each execution with structured logs and
// lifecycle events. Request framing, authentication and response decoding
// belong entirely to the Executor implementation.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Query is any value that renders itself into a complete pipeline query
// string. *esql.Command satisfies it.
type Query interface {
	Render() (string, error)
}

// Executor transports a rendered query string to the engine and returns its
// decoded response.
type Executor interface {
	Execute(ctx context.Context, query string) (any, error)
}

// QueryEventType identifies a step in a query's execution lifecycle.
type QueryEventType string

// Lifecycle event types emitted around query execution.
const (
	QueryExecuteStart   QueryEventType = "query.execute.start"
	QueryExecuteSuccess QueryEventType = "query.execute.success"
	QueryExecuteFailed  QueryEventType = "query.execute.failed"
)

// QueryEvent describes one step in a query's execution lifecycle.
type QueryEvent struct {
	Type      QueryEventType `json:"type"`
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Client renders queries and hands them to an Executor, emitting lifecycle
// events and structured logs around each execution.
type Client struct {
	executor Executor
	bus      *events.TypedEventBus[QueryEvent]
	logger   *zap.Logger
}

// New creates a Client around the given executor. The event bus and logger
// may be nil, in which case events are not emitted and logging is a no-op.
func New(executor Executor, bus *events.TypedEventBus[QueryEvent], logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{executor: executor, bus: bus, logger: logger}
}

func (c *Client) emit(event QueryEvent) {
	if c.bus != nil {
		c.bus.Emit(string(event.Type), event)
	}
}

// Run renders the query and executes it through the configured executor.
// The response is returned as the executor produced it.
func (c *Client) Run(ctx context.Context, query Query) (any, error) {
	if c.executor == nil {
		return nil, fmt.Errorf("client has no executor configured")
	}
	text, err := query.Render()
	if err != nil {
		return nil, fmt.Errorf("query cannot be rendered: %w", err)
	}

	id := uuid.New().String()
	start := time.Now()
	c.logger.Info("Executing query", zap.String("id", id), zap.String("query", text))
	c.emit(QueryEvent{Type: QueryExecuteStart, ID: id, Query: text, Timestamp: start})

	result, err := c.executor.Execute(ctx, text)
	if err != nil {
		c.logger.Error("Query execution failed",
			zap.String("id", id),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		c.emit(QueryEvent{
			Type:      QueryExecuteFailed,
			ID:        id,
			Query:     text,
			Error:     err.Error(),
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		})
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	c.logger.Info("Query executed",
		zap.String("id", id),
		zap.Duration("duration", time.Since(start)))
	c.emit(QueryEvent{
		Type:      QueryExecuteSuccess,
		ID:        id,
		Query:     text,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	})
	return result, nil
}
