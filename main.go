package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-esql/core/client"
	"github.com/asaidimu/go-esql/core/esql"
	"github.com/asaidimu/go-esql/core/expr"
	"go.uber.org/zap"
)

// echoExecutor stands in for a real transport: it just returns the query
// text it was given.
type echoExecutor struct{}

func (e *echoExecutor) Execute(ctx context.Context, query string) (any, error) {
	return fmt.Sprintf("executed:\n%s", query), nil
}

func main() {
	// --- Composing queries ---

	// A simple projection and sort over an index.
	basic := esql.From("employees").
		Keep("first_name", "last_name", "height").
		Sort("height DESC")

	// Expressions built with the expr package render themselves; the
	// builder trusts their text verbatim.
	filtered := esql.From("employees").
		Where(expr.Col("still_hired").Eq(true).And(expr.Col("salary").Gt(50000))).
		Eval(esql.Named("height_ft", expr.Col("height").Mul(3.281))).
		Limit(20)

	// Aggregations with grouping.
	stats := esql.From("employees").
		Stats(esql.Named("avg_salary", expr.Avg(expr.Col("salary"))), esql.Named("headcount", expr.Count())).
		By("country")

	// A forked pipeline running two branches over the same input.
	forked := esql.From("employees").
		Fork(
			esql.Branch().Where(expr.Col("emp_no").Eq(10001)),
			esql.Branch().Where(expr.Col("emp_no").Eq(10002)).Sort("first_name ASC"),
		).
		Limit(10)

	for _, query := range []interface{ Render() (string, error) }{basic, filtered, stats, forked} {
		text, err := query.Render()
		if err != nil {
			log.Fatalf("Failed to render query: %v", err)
		}
		fmt.Println(text)
		fmt.Println("---")
	}

	// --- Executing through a client ---

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	bus, err := events.NewTypedEventBus[client.QueryEvent](events.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create event bus: %v", err)
	}
	unsubscribe := bus.Subscribe(string(client.QueryExecuteSuccess), func(ctx context.Context, event client.QueryEvent) error {
		fmt.Printf("event: %s id=%s duration=%s\n", event.Type, event.ID, event.Duration)
		return nil
	})
	defer unsubscribe()

	c := client.New(&echoExecutor{}, bus, logger)
	result, err := c.Run(context.Background(), basic)
	if err != nil {
		log.Fatalf("Failed to run query: %v", err)
	}
	fmt.Println(result)

	// Give the asynchronous event bus a moment to deliver.
	time.Sleep(10 * time.Millisecond)
}
