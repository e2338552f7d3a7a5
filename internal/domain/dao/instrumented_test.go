package dao_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
	"github.com/jrjohn/outreach-api/internal/testutil/mocks"
)

type recordedOp struct {
	op      string
	success bool
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *fakeRecorder) RecordDBOperation(ctx context.Context, operation string, success bool, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{operation, success})
}

func setupInstrumented(t *testing.T) (dao.UserDAO, *mocks.MockUserDAO, *fakeRecorder, *tracetest.SpanRecorder) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	inner := mocks.NewMockUserDAO()
	recorder := &fakeRecorder{}
	return dao.NewInstrumentedUserDAO(inner, recorder, tp.Tracer("test"), "mongodb"), inner, recorder, spans
}

func TestInstrumentedUserDAO_RecordsSuccess(t *testing.T) {
	userDAO, _, recorder, spans := setupInstrumented(t)
	ctx := context.Background()

	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee"}))
	n, err := userDAO.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, []recordedOp{{"write_one", true}, {"count", true}}, recorder.ops)

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "dao.write_one", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
}

func TestInstrumentedUserDAO_RecordsFailure(t *testing.T) {
	userDAO, inner, recorder, spans := setupInstrumented(t)

	expectedErr := errors.New("database error")
	inner.FindErr = expectedErr

	_, err := userDAO.Find(context.Background(), nil, dao.DefaultProjection)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, []recordedOp{{"find", false}}, recorder.ops)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestInstrumentedUserDAO_PassesResultsThrough(t *testing.T) {
	userDAO, _, _, _ := setupInstrumented(t)
	ctx := context.Background()

	require.NoError(t, userDAO.WriteMany(ctx, []translator.Document{
		{"email": "ann@example.com"},
		{"email": "bob@example.com"},
	}))

	doc, err := userDAO.FindOne(ctx, translator.Filter{"email": "bob@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, translator.Document{"email": "bob@example.com"}, doc)

	missing, err := userDAO.FindOne(ctx, translator.Filter{"email": "nobody@example.com"}, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	matched, err := userDAO.UpdateOne(ctx, translator.Filter{"email": "ann@example.com"}, translator.Patch{"active": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	deleted, err := userDAO.DeleteMany(ctx, translator.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	require.NoError(t, userDAO.DropIndex(ctx))
	_, err = userDAO.Search(ctx, "ann", nil)
	assert.True(t, dao.IsStoreError(err))
	require.NoError(t, userDAO.MakeIndex(ctx))
	require.NoError(t, userDAO.ResetCollection(ctx))
	require.NoError(t, userDAO.Ping(ctx))
}
