package mocks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// ErrTextIndexRequired mirrors the store's refusal to search without a text index.
var ErrTextIndexRequired = errors.New("text index required for $text query")

// MockUserDAO is an in-memory implementation of dao.UserDAO. Documents are
// kept in insertion order and receive an "_id" like a real store.
type MockUserDAO struct {
	mu      sync.RWMutex
	docs    []translator.Document
	nextID  int
	indexed bool

	// UniqueFields simulates unique indexes: inserting a duplicate value
	// fails with a constraint StoreError.
	UniqueFields []string

	// Error injection
	CountErr      error
	FindErr       error
	SearchErr     error
	FindOneErr    error
	WriteOneErr   error
	WriteManyErr  error
	UpdateOneErr  error
	DeleteOneErr  error
	DeleteManyErr error
	ResetErr      error
	MakeIndexErr  error
	DropIndexErr  error
	PingErr       error

	// Calls counts invocations per operation name.
	Calls map[string]int
}

var _ dao.UserDAO = (*MockUserDAO)(nil)

// NewMockUserDAO creates an empty, indexed in-memory user collection.
func NewMockUserDAO() *MockUserDAO {
	return &MockUserDAO{
		nextID:  1,
		indexed: true,
		Calls:   make(map[string]int),
	}
}

// Documents returns a copy of every stored document including "_id".
func (m *MockUserDAO) Documents() []translator.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]translator.Document, len(m.docs))
	for i, doc := range m.docs {
		out[i] = cloneDoc(doc)
	}
	return out
}

// HasIndex reports whether the text index exists.
func (m *MockUserDAO) HasIndex() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexed
}

func (m *MockUserDAO) record(op string) {
	m.Calls[op]++
}

func (m *MockUserDAO) Count(ctx context.Context, filter translator.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("count")
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	var n int64
	for _, doc := range m.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *MockUserDAO) Find(ctx context.Context, filter translator.Filter, projection dao.Projection) ([]translator.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("find")
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	out := []translator.Document{}
	for _, doc := range m.docs {
		if matches(doc, filter) {
			out = append(out, project(doc, projection))
		}
	}
	return out, nil
}

func (m *MockUserDAO) Search(ctx context.Context, text string, projection dao.Projection) ([]translator.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("search")
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if !m.indexed {
		return nil, dao.NewStoreError("search", dao.KindIndex, ErrTextIndexRequired)
	}
	terms := strings.Fields(strings.ToLower(text))
	out := []translator.Document{}
	for _, doc := range m.docs {
		if containsAnyTerm(doc, terms) {
			out = append(out, project(doc, projection))
		}
	}
	return out, nil
}

func (m *MockUserDAO) FindOne(ctx context.Context, filter translator.Filter, projection dao.Projection) (translator.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("find_one")
	if m.FindOneErr != nil {
		return nil, m.FindOneErr
	}
	for _, doc := range m.docs {
		if matches(doc, filter) {
			return project(doc, projection), nil
		}
	}
	return nil, nil
}

func (m *MockUserDAO) WriteOne(ctx context.Context, doc translator.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("write_one")
	if m.WriteOneErr != nil {
		return m.WriteOneErr
	}
	return m.insert(doc)
}

func (m *MockUserDAO) WriteMany(ctx context.Context, docs []translator.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("write_many")
	if m.WriteManyErr != nil {
		return m.WriteManyErr
	}
	for _, doc := range docs {
		if err := m.insert(doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockUserDAO) insert(doc translator.Document) error {
	for _, field := range m.UniqueFields {
		for _, existing := range m.docs {
			if v, ok := doc[field]; ok && valuesEqual(existing[field], v) {
				return dao.NewStoreError("write_one", dao.KindConstraint,
					fmt.Errorf("duplicate key on %s: %v", field, v))
			}
		}
	}
	stored := cloneDoc(doc)
	stored[dao.IDField] = m.nextID
	m.nextID++
	m.docs = append(m.docs, stored)
	return nil
}

func (m *MockUserDAO) UpdateOne(ctx context.Context, filter translator.Filter, patch translator.Patch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update_one")
	if m.UpdateOneErr != nil {
		return 0, m.UpdateOneErr
	}
	if len(patch) == 0 {
		return 0, nil
	}
	for _, doc := range m.docs {
		if matches(doc, filter) {
			for k, v := range patch {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockUserDAO) DeleteOne(ctx context.Context, filter translator.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete_one")
	if m.DeleteOneErr != nil {
		return 0, m.DeleteOneErr
	}
	for i, doc := range m.docs {
		if matches(doc, filter) {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockUserDAO) DeleteMany(ctx context.Context, filter translator.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete_many")
	if m.DeleteManyErr != nil {
		return 0, m.DeleteManyErr
	}
	kept := m.docs[:0]
	var deleted int64
	for _, doc := range m.docs {
		if matches(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	m.docs = kept
	return deleted, nil
}

func (m *MockUserDAO) ResetCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("reset_collection")
	if m.ResetErr != nil {
		return m.ResetErr
	}
	m.docs = nil
	m.indexed = true
	return nil
}

func (m *MockUserDAO) MakeIndex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("make_index")
	if m.MakeIndexErr != nil {
		return m.MakeIndexErr
	}
	m.indexed = true
	return nil
}

func (m *MockUserDAO) DropIndex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("drop_index")
	if m.DropIndexErr != nil {
		return m.DropIndexErr
	}
	m.indexed = false
	return nil
}

func (m *MockUserDAO) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ping")
	return m.PingErr
}

func matches(doc translator.Document, filter translator.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares numbers by value regardless of their Go type, the way
// a document store compares BSON numerics.
func valuesEqual(a, b any) bool {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func containsAnyTerm(doc translator.Document, terms []string) bool {
	for k, v := range doc {
		s, ok := v.(string)
		if !ok || k == dao.IDField {
			continue
		}
		words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			for _, term := range terms {
				if w == term {
					return true
				}
			}
		}
	}
	return false
}

func project(doc translator.Document, projection dao.Projection) translator.Document {
	p := projection.OrDefault()
	inclusive := false
	for k, include := range p {
		if include && k != dao.IDField {
			inclusive = true
		}
	}

	out := translator.Document{}
	for k, v := range doc {
		include, listed := p[k]
		switch {
		case listed:
			if include {
				out[k] = v
			}
		case !inclusive || k == dao.IDField:
			out[k] = v
		}
	}
	return out
}

func cloneDoc(doc translator.Document) translator.Document {
	out := make(translator.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
