package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// LLMRequestEventData captures the data for a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMRequestFilter narrows List. Zero fields match everything; Limit
// applies after the other conditions.
type LLMRequestFilter struct {
	Purpose    string
	Provider   string
	FailedOnly bool
	Limit      int
}

// LLMUsage aggregates the requests made to one model.
type LLMUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// LLMTotals summarizes the whole request log.
type LLMTotals struct {
	Calls        int
	Failed       int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	First, Last  time.Time
}

// LLMRequestRepo records and queries LLM requests.
type LLMRequestRepo interface {
	// Append records a request.
	Append(ctx context.Context, data LLMRequestEventData) error

	// List returns matching requests, most recent first.
	List(ctx context.Context, f LLMRequestFilter) ([]LLMRequestEvent, error)

	// Get returns the request with id, or nil if none exists.
	Get(ctx context.Context, id int) (*LLMRequestEvent, error)

	// Totals summarizes every recorded request.
	Totals(ctx context.Context) (LLMTotals, error)

	// UsageByModel aggregates requests per model, busiest first.
	UsageByModel(ctx context.Context) ([]LLMUsage, error)
}

var llmSelectColumns = []string{
	"id", "created_at", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

type llmRequestRepo struct {
	drv *entsql.Driver
}

func (r *llmRequestRepo) Append(ctx context.Context, d LLMRequestEventData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(llmTable.Name).
		Columns(llmSelectColumns[1:]...).
		Values(
			time.Now().UnixMilli(), d.Provider, d.Model, d.Purpose,
			d.InputTokens, d.OutputTokens, d.LatencyMs, d.Success,
			d.ErrorMessage, d.RequestBody, d.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *llmRequestRepo) List(ctx context.Context, f LLMRequestFilter) ([]LLMRequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(llmSelectColumns...).
		From(entsql.Table(llmTable.Name)).
		OrderBy(entsql.Desc("id"))
	if f.Purpose != "" {
		sel.Where(entsql.EQ("purpose", f.Purpose))
	}
	if f.Provider != "" {
		sel.Where(entsql.EQ("provider", f.Provider))
	}
	if f.FailedOnly {
		sel.Where(entsql.EQ("success", false))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	return r.query(ctx, sel)
}

func (r *llmRequestRepo) Get(ctx context.Context, id int) (*LLMRequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(llmSelectColumns...).
		From(entsql.Table(llmTable.Name)).
		Where(entsql.EQ("id", id))
	events, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *llmRequestRepo) Totals(ctx context.Context) (LLMTotals, error) {
	events, err := r.List(ctx, LLMRequestFilter{})
	if err != nil {
		return LLMTotals{}, err
	}
	var t LLMTotals
	var latency int64
	for _, e := range events {
		t.Calls++
		if !e.Success {
			t.Failed++
		}
		t.InputTokens += e.InputTokens
		t.OutputTokens += e.OutputTokens
		latency += e.LatencyMs
		if t.First.IsZero() || e.Timestamp.Before(t.First) {
			t.First = e.Timestamp
		}
		if e.Timestamp.After(t.Last) {
			t.Last = e.Timestamp
		}
	}
	if t.Calls > 0 {
		t.AvgLatencyMs = latency / int64(t.Calls)
	}
	return t, nil
}

func (r *llmRequestRepo) UsageByModel(ctx context.Context) ([]LLMUsage, error) {
	events, err := r.List(ctx, LLMRequestFilter{})
	if err != nil {
		return nil, err
	}
	byModel := map[string]*LLMUsage{}
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &LLMUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}
	out := make([]LLMUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}

func (r *llmRequestRepo) query(ctx context.Context, sel *entsql.Selector) ([]LLMRequestEvent, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		var (
			e       LLMRequestEvent
			created int64
		)
		if err := rows.Scan(
			&e.ID, &created, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
		); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		e.Timestamp = time.UnixMilli(created)
		events = append(events, e)
	}
	return events, rows.Err()
}
