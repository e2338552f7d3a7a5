package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

func TestUserMapper_ToEntity(t *testing.T) {
	m := NewUserMapper()

	t.Run("nil document", func(t *testing.T) {
		user, err := m.ToEntity(nil)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("store numeric types", func(t *testing.T) {
		for _, age := range []any{int32(30), int64(30), 30, 30.0, json.Number("30")} {
			user, err := m.ToEntity(translator.Document{
				"_id":   "65f0c0ffee",
				"name":  "Ann Lee",
				"age":   age,
				"email": "ann@example.com",
				"score": 0.75,
			})
			require.NoError(t, err)
			assert.Equal(t, 30, user.Age)
			assert.Equal(t, "Ann Lee", user.Name)
			assert.Nil(t, user.Active)
		}
	})

	t.Run("active flag", func(t *testing.T) {
		user, err := m.ToEntity(translator.Document{"active": true})
		require.NoError(t, err)
		require.NotNil(t, user.Active)
		assert.True(t, *user.Active)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := m.ToEntity(translator.Document{"name": 1})
		assert.Error(t, err)
		_, err = m.ToEntity(translator.Document{"age": 30.5})
		assert.Error(t, err)
		_, err = m.ToEntity(translator.Document{"active": "yes"})
		assert.Error(t, err)
		_, err = m.ToEntity(translator.Document{"score": "high"})
		assert.Error(t, err)
	})
}

func TestUserMapper_RoundTrip(t *testing.T) {
	m := NewUserMapper()
	user := entity.DefaultUser

	got, err := m.ToEntity(m.ToDocument(&user))
	require.NoError(t, err)
	assert.Equal(t, &user, got)
	assert.Nil(t, m.ToDocument(nil))
}

func TestUserMapper_ToEntities(t *testing.T) {
	m := NewUserMapper()

	users, err := m.ToEntities(nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	users, err = m.ToEntities([]translator.Document{{"name": "Ann"}, {"name": "Bob"}})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = m.ToEntities([]translator.Document{{"name": "Ann"}, {"name": false}})
	assert.Error(t, err)
}
