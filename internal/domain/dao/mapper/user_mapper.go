// Package mapper converts stored documents back into User entities.
package mapper

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// UserMapper converts between translator.Document and User entity.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToDocument converts a User entity to an insertable document.
func (m *UserMapper) ToDocument(user *entity.User) translator.Document {
	if user == nil {
		return nil
	}
	return translator.FromUser(user)
}

// ToEntity converts a stored document to a User entity. Numeric fields are
// accepted in any of the representations the store or a cache may return.
// Keys outside the user shape, such as the storage identifier, are ignored.
func (m *UserMapper) ToEntity(doc translator.Document) (*entity.User, error) {
	if doc == nil {
		return nil, nil
	}

	user := &entity.User{}
	var err error

	if v, ok := doc[entity.FieldName]; ok {
		if user.Name, err = asString(entity.FieldName, v); err != nil {
			return nil, err
		}
	}
	if v, ok := doc[entity.FieldEmail]; ok {
		if user.Email, err = asString(entity.FieldEmail, v); err != nil {
			return nil, err
		}
	}
	if v, ok := doc[entity.FieldAge]; ok {
		age, err := asFloat(entity.FieldAge, v)
		if err != nil {
			return nil, err
		}
		if age != math.Trunc(age) {
			return nil, fmt.Errorf("field %s: %v is not an integer", entity.FieldAge, v)
		}
		user.Age = int(age)
	}
	if v, ok := doc[entity.FieldScore]; ok {
		if user.Score, err = asFloat(entity.FieldScore, v); err != nil {
			return nil, err
		}
	}
	if v, ok := doc[entity.FieldActive]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("field %s: unexpected type %T", entity.FieldActive, v)
		}
		user.Active = entity.BoolPtr(b)
	}

	return user, nil
}

// ToEntities converts a slice of documents to a slice of User entities.
func (m *UserMapper) ToEntities(docs []translator.Document) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		user, err := m.ToEntity(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: unexpected type %T", field, v)
	}
	return s, nil
}

func asFloat(field string, v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("field %s: unexpected type %T", field, v)
}
