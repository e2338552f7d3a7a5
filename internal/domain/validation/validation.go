// Package validation turns untyped request payloads into the closed user
// shapes, rejecting unknown keys, wrong types and out-of-range values.
// It never touches the store.
package validation

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
)

// Keys of the update request envelope.
const (
	KeyQuery  = "query"
	KeyUpdate = "update"
)

var mandatoryUserFields = []string{entity.FieldName, entity.FieldAge, entity.FieldEmail, entity.FieldScore}

// ParseUser validates a JSON object as a complete User.
func ParseUser(data []byte) (*entity.User, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return userFromObject(obj)
}

// ParseUserQuery validates a JSON object as a UserQuery.
func ParseUserQuery(data []byte) (entity.UserQuery, error) {
	fields, err := parseFields(data)
	return entity.UserQuery(fields), err
}

// ParseUserUpdate validates a JSON object as a UserUpdate.
func ParseUserUpdate(data []byte) (entity.UserUpdate, error) {
	fields, err := parseFields(data)
	return entity.UserUpdate(fields), err
}

// ParseUpdateRequest validates the {"query": ..., "update": ...} envelope.
// Both keys are mandatory; nested violations are reported as "query.<field>"
// and "update.<field>".
func ParseUpdateRequest(data []byte) (entity.UserQuery, entity.UserUpdate, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return entity.UserQuery{}, entity.UserUpdate{}, err
	}
	return updateRequestFromObject(obj)
}

// UpdateRequestFromMap validates an untyped update envelope.
func UpdateRequestFromMap(m map[string]any) (entity.UserQuery, entity.UserUpdate, error) {
	obj, err := normalize(m)
	if err != nil {
		return entity.UserQuery{}, entity.UserUpdate{}, err
	}
	return updateRequestFromObject(obj)
}

// DecodePayload decodes a request body into an untyped mapping suitable for
// the *FromMap functions. Anything but a single JSON object is rejected.
func DecodePayload(data []byte) (map[string]any, error) {
	return decodeObject(data)
}

// UserFromMap validates an untyped mapping as a complete User.
func UserFromMap(m map[string]any) (*entity.User, error) {
	obj, err := normalize(m)
	if err != nil {
		return nil, err
	}
	return userFromObject(obj)
}

// UserQueryFromMap validates an untyped mapping as a UserQuery.
// A nil map is an empty query.
func UserQueryFromMap(m map[string]any) (entity.UserQuery, error) {
	fields, err := fieldsFromMap(m)
	return entity.UserQuery(fields), err
}

// UserUpdateFromMap validates an untyped mapping as a UserUpdate.
// A nil map is an empty update.
func UserUpdateFromMap(m map[string]any) (entity.UserUpdate, error) {
	fields, err := fieldsFromMap(m)
	return entity.UserUpdate(fields), err
}

// ValidateSearchText rejects blank full-text search input.
func ValidateSearchText(text string) error {
	if strings.TrimSpace(text) == "" {
		return newError([]Violation{{Field: "text", Reason: ReasonEmptyText}})
	}
	return nil
}

func parseFields(data []byte) (entity.UserFields, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return entity.UserFields{}, err
	}
	fields, violations := decodeFields(obj)
	if err := newError(violations); err != nil {
		return entity.UserFields{}, err
	}
	return fields, nil
}

func fieldsFromMap(m map[string]any) (entity.UserFields, error) {
	if m == nil {
		return entity.UserFields{}, nil
	}
	obj, err := normalize(m)
	if err != nil {
		return entity.UserFields{}, err
	}
	fields, violations := decodeFields(obj)
	if err := newError(violations); err != nil {
		return entity.UserFields{}, err
	}
	return fields, nil
}

func userFromObject(obj map[string]any) (*entity.User, error) {
	var violations []Violation
	for _, name := range mandatoryUserFields {
		if v, ok := obj[name]; !ok || v == nil {
			violations = append(violations, Violation{Field: name, Reason: ReasonRequired})
		}
	}

	fields, fieldViolations := decodeFields(obj)
	violations = append(violations, fieldViolations...)
	if err := newError(sortViolations(violations)); err != nil {
		return nil, err
	}

	name, _ := fields.Name.Get()
	age, _ := fields.Age.Get()
	email, _ := fields.Email.Get()
	score, _ := fields.Score.Get()
	return &entity.User{
		Name:   name,
		Age:    age,
		Email:  email,
		Active: fields.Active.Ptr(),
		Score:  score,
	}, nil
}

func updateRequestFromObject(obj map[string]any) (entity.UserQuery, entity.UserUpdate, error) {
	var violations []Violation
	section := func(key string) entity.UserFields {
		raw, ok := obj[key]
		if !ok || raw == nil {
			violations = append(violations, Violation{Field: key, Reason: ReasonRequired})
			return entity.UserFields{}
		}
		nested, ok := raw.(map[string]any)
		if !ok {
			violations = append(violations, Violation{Field: key, Reason: ReasonNotObject})
			return entity.UserFields{}
		}
		fields, vs := decodeFields(nested)
		violations = append(violations, prefixed(key, vs)...)
		return fields
	}

	query := section(KeyQuery)
	update := section(KeyUpdate)
	violations = append(violations, unknownKeys(obj, KeyQuery, KeyUpdate)...)

	if err := newError(violations); err != nil {
		return entity.UserQuery{}, entity.UserUpdate{}, err
	}
	return entity.UserQuery(query), entity.UserUpdate(update), nil
}

// decodeFields decodes every known key of obj and reports violations for
// bad values and for unknown keys. JSON null counts as absent.
func decodeFields(obj map[string]any) (entity.UserFields, []Violation) {
	var fields entity.UserFields
	var violations []Violation

	for _, name := range entity.UserFieldNames {
		v, ok := obj[name]
		if !ok || v == nil {
			continue
		}
		if reason := fieldDecoders[name](v, &fields); reason != "" {
			violations = append(violations, Violation{Field: name, Reason: reason})
		}
	}

	return fields, append(violations, unknownKeys(obj, entity.UserFieldNames...)...)
}

func unknownKeys(obj map[string]any, known ...string) []Violation {
	var keys []string
	for key := range obj {
		if !contains(known, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	violations := make([]Violation, len(keys))
	for i, key := range keys {
		violations[i] = Violation{Field: key, Reason: ReasonUnknownField}
	}
	return violations
}

// sortViolations orders violations by canonical field order, keeping
// unknown fields last.
func sortViolations(violations []Violation) []Violation {
	rank := func(field string) int {
		for i, name := range entity.UserFieldNames {
			if name == field {
				return i
			}
		}
		return len(entity.UserFieldNames)
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return rank(violations[i].Field) < rank(violations[j].Field)
	})
	return violations
}

// decodeObject decodes data as a single JSON object, keeping numbers as
// json.Number so integers and floats can be told apart.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, rootError(ReasonNotObject)
		}
		return nil, rootError("invalid JSON: " + err.Error())
	}
	if obj == nil {
		return nil, rootError(ReasonNotObject)
	}
	if dec.More() {
		return nil, rootError("invalid JSON: unexpected data after object")
	}
	return obj, nil
}

// normalize round-trips an in-memory mapping through JSON so it is checked
// with the same rules as a request body.
func normalize(m map[string]any) (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, rootError("invalid value: " + err.Error())
	}
	return decodeObject(data)
}

func rootError(reason string) error {
	return newError([]Violation{{Field: RootField, Reason: reason}})
}

func asNumber(v any) (json.Number, bool) {
	n, ok := v.(json.Number)
	return n, ok
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
