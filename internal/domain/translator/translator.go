// Package translator converts validated user shapes into store-agnostic
// equality filters, set-patches and insert documents. It performs no
// validation of its own.
package translator

import (
	"github.com/jrjohn/outreach-api/internal/domain/entity"
)

// Filter maps field names to the exact value a document must hold.
// An empty Filter matches every document.
type Filter map[string]any

// Patch maps field names to the value to set. Fields not in the Patch are
// left untouched; a Patch never unsets a field.
type Patch map[string]any

// Document is a plain stored record keyed by field name.
type Document map[string]any

// ToFilter builds an equality filter from the present fields of q.
func ToFilter(q entity.UserQuery) Filter {
	return Filter(present(entity.UserFields(q)))
}

// ToPatch builds a set-patch from the present fields of u.
func ToPatch(u entity.UserUpdate) Patch {
	return Patch(present(entity.UserFields(u)))
}

// FromUser builds the document to insert for user, omitting an absent
// active flag.
func FromUser(user *entity.User) Document {
	doc := Document{
		entity.FieldName:  user.Name,
		entity.FieldAge:   user.Age,
		entity.FieldEmail: user.Email,
		entity.FieldScore: user.Score,
	}
	if user.Active != nil {
		doc[entity.FieldActive] = *user.Active
	}
	return doc
}

// FromUsers builds insert documents for users.
func FromUsers(users []*entity.User) []Document {
	docs := make([]Document, len(users))
	for i, user := range users {
		docs[i] = FromUser(user)
	}
	return docs
}

func present(fields entity.UserFields) map[string]any {
	out := make(map[string]any)
	for _, f := range fields.Fields() {
		if f.Present {
			out[f.Name] = f.Value
		}
	}
	return out
}
