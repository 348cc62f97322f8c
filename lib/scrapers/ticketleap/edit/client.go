// Package edit performs mutations on the ticketleap admin site by
// replaying the site's own forms.
package edit

import (
	"context"
	"log/slog"
	"time"

	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/form"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/scrapers/ticketleap/view"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Client struct {
	Core *core.Session
	View *view.Client
}

func NewClient(session *core.Session) *Client {
	return &Client{
		Core: session,
		View: view.NewClient(session),
	}
}

// operation tracks the stage and the entity an operation is working on so
// failures can be reported precisely.
type operation struct {
	name  string
	key   string
	stage Stage
}

func (o *operation) at(stage Stage) {
	o.stage = stage
}

func (o *operation) on(key string) {
	o.key = key
}

func (c *Client) run(ctx context.Context, name, key string, fn func(ctx context.Context, op *operation) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	// resolution starts from a live scrape for every operation
	ctx = view.WithScope(ctx)

	start := time.Now()
	op := &operation{name: name, key: key, stage: StageResolving}
	err := fn(ctx, op)
	if err == nil {
		recordOperation(ctx, name, StageSuccess, time.Since(start))
		slog.DebugContext(ctx, "operation succeeded", "op", name, "key", key)
		return nil
	}

	recordOperation(ctx, name, StageFailed, time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, string(op.stage))
	slog.WarnContext(
		ctx, "operation failed",
		"op", name,
		"key", op.key,
		"stage", op.stage,
		"err", err,
	)
	return &OperationError{Op: name, Key: op.key, Stage: op.stage, Err: err}
}

// fetchForm loads path and extracts the form called name from it.
func (c *Client) fetchForm(ctx context.Context, op *operation, path, name string) (payload.Fields, string, error) {
	op.at(StageFetchingForm)
	doc, err := c.Core.Page(ctx, core.PageRequest{Path: path})
	if err != nil {
		return payload.Fields{}, "", err
	}

	op.at(StageExtracting)
	fields, err := form.Extract(doc, name)
	if err != nil {
		return payload.Fields{}, "", err
	}
	return fields, doc.Url.String(), nil
}
