package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
	"github.com/jrjohn/outreach-api/internal/testutil/mocks"
)

const fixturesYAML = `
users:
  - name: Ann Lee
    age: 30
    email: ann@x.io
    score: 0.8
  - name: Bob Ray
    age: 41
    email: bob@x.io
    active: true
    score: 0.1
`

func TestDecode(t *testing.T) {
	users, err := Decode(strings.NewReader(fixturesYAML))

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ann Lee", users[0].Name)
	assert.Equal(t, 30, users[0].Age)
	assert.Nil(t, users[0].Active)
	require.NotNil(t, users[1].Active)
	assert.True(t, *users[1].Active)
}

func TestDecode_Empty(t *testing.T) {
	users, err := Decode(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDecode_InvalidUser(t *testing.T) {
	_, err := Decode(strings.NewReader("users:\n  - name: Bo\n    email: b@x.io\n    score: 0.5\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "users[0]")

	var validationErr *validation.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.True(t, validationErr.Has(entity.FieldName))
	assert.True(t, validationErr.Has(entity.FieldAge))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("users: [unterminated"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	ctx := context.Background()
	require.NoError(t, userDAO.WriteOne(ctx, map[string]any{"name": "stale"}))

	users, err := Decode(strings.NewReader(fixturesYAML))
	require.NoError(t, err)

	require.NoError(t, Run(ctx, userDAO, users, zap.NewNop()))

	docs := userDAO.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "Ann Lee", docs[0][entity.FieldName])
	assert.True(t, userDAO.HasIndex())
	assert.Equal(t, 1, userDAO.Calls["reset_collection"])
}

func TestRun_DefaultUser(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()

	require.NoError(t, Run(context.Background(), userDAO, nil, zap.NewNop()))

	docs := userDAO.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, entity.DefaultUser.Email, docs[0][entity.FieldEmail])
}

func TestRun_ResetFails(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	userDAO.ResetErr = errors.New("unreachable")

	err := Run(context.Background(), userDAO, nil, zap.NewNop())

	require.Error(t, err)
	assert.Equal(t, 0, userDAO.Calls["write_many"])
}

func TestRun_WithCacheInvalidatesServerReads(t *testing.T) {
	ctx := context.Background()
	inner := mocks.NewMockUserDAO()
	client := mocks.NewMockCacheClient()

	// a server's view sharing the same cache
	server := WithCache(inner, client, time.Minute, zap.NewNop())
	n, err := server.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, Run(ctx, WithCache(inner, client, time.Minute, zap.NewNop()), nil, zap.NewNop()))

	assert.Equal(t, 2, client.Calls["incr"], "reset and write each bump the generation")
	n, err = server.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWithCache_NilClient(t *testing.T) {
	inner := mocks.NewMockUserDAO()

	assert.Same(t, inner, WithCache(inner, nil, time.Minute, zap.NewNop()))
}
