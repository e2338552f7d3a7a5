package dao

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// OperationRecorder receives the outcome of every store operation.
type OperationRecorder interface {
	RecordDBOperation(ctx context.Context, operation string, success bool, duration time.Duration)
}

// instrumentedUserDAO traces and times every call to the wrapped UserDAO.
type instrumentedUserDAO struct {
	next     UserDAO
	recorder OperationRecorder
	tracer   trace.Tracer
	system   string
}

// NewInstrumentedUserDAO wraps next with tracing spans and operation metrics.
func NewInstrumentedUserDAO(next UserDAO, recorder OperationRecorder, tracer trace.Tracer, system string) UserDAO {
	return &instrumentedUserDAO{
		next:     next,
		recorder: recorder,
		tracer:   tracer,
		system:   system,
	}
}

func (d *instrumentedUserDAO) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, "dao."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", d.system),
			attribute.String("db.operation", op),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	d.recorder.RecordDBOperation(ctx, op, err == nil, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (d *instrumentedUserDAO) Count(ctx context.Context, filter translator.Filter) (n int64, err error) {
	err = d.observe(ctx, "count", func(ctx context.Context) error {
		n, err = d.next.Count(ctx, filter)
		return err
	})
	return n, err
}

func (d *instrumentedUserDAO) Find(ctx context.Context, filter translator.Filter, projection Projection) (docs []translator.Document, err error) {
	err = d.observe(ctx, "find", func(ctx context.Context) error {
		docs, err = d.next.Find(ctx, filter, projection)
		return err
	})
	return docs, err
}

func (d *instrumentedUserDAO) Search(ctx context.Context, text string, projection Projection) (docs []translator.Document, err error) {
	err = d.observe(ctx, "search", func(ctx context.Context) error {
		docs, err = d.next.Search(ctx, text, projection)
		return err
	})
	return docs, err
}

func (d *instrumentedUserDAO) FindOne(ctx context.Context, filter translator.Filter, projection Projection) (doc translator.Document, err error) {
	err = d.observe(ctx, "find_one", func(ctx context.Context) error {
		doc, err = d.next.FindOne(ctx, filter, projection)
		return err
	})
	return doc, err
}

func (d *instrumentedUserDAO) WriteOne(ctx context.Context, doc translator.Document) error {
	return d.observe(ctx, "write_one", func(ctx context.Context) error {
		return d.next.WriteOne(ctx, doc)
	})
}

func (d *instrumentedUserDAO) WriteMany(ctx context.Context, docs []translator.Document) error {
	return d.observe(ctx, "write_many", func(ctx context.Context) error {
		return d.next.WriteMany(ctx, docs)
	})
}

func (d *instrumentedUserDAO) UpdateOne(ctx context.Context, filter translator.Filter, patch translator.Patch) (n int64, err error) {
	err = d.observe(ctx, "update_one", func(ctx context.Context) error {
		n, err = d.next.UpdateOne(ctx, filter, patch)
		return err
	})
	return n, err
}

func (d *instrumentedUserDAO) DeleteOne(ctx context.Context, filter translator.Filter) (n int64, err error) {
	err = d.observe(ctx, "delete_one", func(ctx context.Context) error {
		n, err = d.next.DeleteOne(ctx, filter)
		return err
	})
	return n, err
}

func (d *instrumentedUserDAO) DeleteMany(ctx context.Context, filter translator.Filter) (n int64, err error) {
	err = d.observe(ctx, "delete_many", func(ctx context.Context) error {
		n, err = d.next.DeleteMany(ctx, filter)
		return err
	})
	return n, err
}

func (d *instrumentedUserDAO) ResetCollection(ctx context.Context) error {
	return d.observe(ctx, "reset_collection", d.next.ResetCollection)
}

func (d *instrumentedUserDAO) MakeIndex(ctx context.Context) error {
	return d.observe(ctx, "make_index", d.next.MakeIndex)
}

func (d *instrumentedUserDAO) DropIndex(ctx context.Context) error {
	return d.observe(ctx, "drop_index", d.next.DropIndex)
}

func (d *instrumentedUserDAO) Ping(ctx context.Context) error {
	return d.observe(ctx, "ping", d.next.Ping)
}
