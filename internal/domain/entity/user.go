package entity

// Field names of the user document. The set is closed: no other key is
// accepted on input or written to the store.
const (
	FieldName   = "name"
	FieldAge    = "age"
	FieldEmail  = "email"
	FieldActive = "active"
	FieldScore  = "score"
)

// UserFieldNames lists the known fields in canonical order.
var UserFieldNames = []string{FieldName, FieldAge, FieldEmail, FieldActive, FieldScore}

// Field constraints shared by User, UserQuery and UserUpdate.
const (
	NameMinLength = 3
	NameMaxLength = 128
	AgeMin        = 1
	AgeMax        = 120
	ScoreMin      = 0.0
	ScoreMax      = 1.0
)

// IsUserField reports whether name is one of the known user fields.
func IsUserField(name string) bool {
	for _, f := range UserFieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// User represents a user document in the system
type User struct {
	Name   string  `json:"name" bson:"name"`
	Age    int     `json:"age" bson:"age"`
	Email  string  `json:"email" bson:"email"`
	Active *bool   `json:"active,omitempty" bson:"active,omitempty"`
	Score  float64 `json:"score" bson:"score"`
}

// UserFields is the partial user shape: every field may be absent.
type UserFields struct {
	Name   Optional[string]  `json:"name"`
	Age    Optional[int]     `json:"age"`
	Email  Optional[string]  `json:"email"`
	Active Optional[bool]    `json:"active"`
	Score  Optional[float64] `json:"score"`
}

// Field is a single named entry of a UserFields value.
type Field struct {
	Name    string
	Value   any
	Present bool
}

// Fields returns every known field in canonical order, marking which are present.
func (f UserFields) Fields() []Field {
	return []Field{
		optionalField(FieldName, f.Name),
		optionalField(FieldAge, f.Age),
		optionalField(FieldEmail, f.Email),
		optionalField(FieldActive, f.Active),
		optionalField(FieldScore, f.Score),
	}
}

// IsEmpty reports whether no field is present.
func (f UserFields) IsEmpty() bool {
	for _, field := range f.Fields() {
		if field.Present {
			return false
		}
	}
	return true
}

func optionalField[T any](name string, o Optional[T]) Field {
	v, ok := o.Get()
	if !ok {
		return Field{Name: name}
	}
	return Field{Name: name, Value: v, Present: true}
}

// UserQuery matches users where each present field equals the given value.
type UserQuery UserFields

// UserUpdate sets each present field on the matched user.
type UserUpdate UserFields

// Sample payloads used by the seed command and API examples.
var (
	DefaultUser = User{
		Name:   "John Smith",
		Age:    42,
		Email:  "john.smith@gmail.com",
		Active: BoolPtr(false),
		Score:  0.5,
	}
	DefaultQuery = UserQuery{
		Email: Some("john.smith@gmail.com"),
	}
	DefaultUpdate = UserUpdate{
		Active: Some(true),
		Score:  Some(0.125),
	}
)

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
