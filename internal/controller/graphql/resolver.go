package graphql

import (
	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/domain/service"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
	"github.com/jrjohn/outreach-api/internal/observability"
	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

const tracerName = "outreach-api/graphql"

// Resolver handles GraphQL resolvers
type Resolver struct {
	userService service.UserService
	version     string
	tracer      trace.Tracer
}

// NewResolver creates a new resolver
func NewResolver(userService service.UserService, version string) *Resolver {
	return &Resolver{
		userService: userService,
		version:     version,
		tracer:      otel.Tracer(tracerName),
	}
}

// resolverError exposes the error code and violations as GraphQL extensions
type resolverError struct {
	appErr *apperrors.AppError
}

func (e *resolverError) Error() string {
	return e.appErr.Message
}

func (e *resolverError) Unwrap() error {
	return e.appErr
}

// Extensions implements gqlerrors.ExtendedError
func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.appErr.Code}
	if e.appErr.Details != nil {
		ext["details"] = e.appErr.Details
	}
	return ext
}

func toGraphQLError(err error) error {
	return &resolverError{appErr: service.ToAppError(err)}
}

// traced wraps a resolver in a span named after the field
func (r *Resolver) traced(field string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		ctx, span := r.tracer.Start(p.Context, "graphql."+field,
			trace.WithAttributes(observability.AttrGraphQLField.String(field)),
		)
		defer span.End()

		p.Context = ctx
		result, err := fn(p)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, toGraphQLError(err)
		}
		return result, nil
	}
}

// Version returns the API version
func (r *Resolver) Version(p graphql.ResolveParams) (interface{}, error) {
	return r.version, nil
}

// Users returns every user matching the filter; no filter matches all
func (r *Resolver) Users(p graphql.ResolveParams) (interface{}, error) {
	users, err := r.userService.Read(p.Context, argObject(p, "filter"))
	if err != nil {
		return nil, err
	}
	return toUserMaps(users), nil
}

// SearchUsers runs a full-text search
func (r *Resolver) SearchUsers(p graphql.ResolveParams) (interface{}, error) {
	text, _ := p.Args["text"].(string)
	users, err := r.userService.Search(p.Context, text)
	if err != nil {
		return nil, err
	}
	return toUserMaps(users), nil
}

// CountUsers counts users matching the filter
func (r *Resolver) CountUsers(p graphql.ResolveParams) (interface{}, error) {
	return r.userService.Count(p.Context, argObject(p, "filter"))
}

// CreateUser validates and stores a new user
func (r *Resolver) CreateUser(p graphql.ResolveParams) (interface{}, error) {
	return r.userService.Create(p.Context, argObject(p, "input"))
}

// UpdateUsers updates the first user matching the query
func (r *Resolver) UpdateUsers(p graphql.ResolveParams) (interface{}, error) {
	return r.userService.Update(p.Context, map[string]any{
		validation.KeyQuery:  argObject(p, "query"),
		validation.KeyUpdate: argObject(p, "update"),
	})
}

// DeleteUsers removes every user matching the query
func (r *Resolver) DeleteUsers(p graphql.ResolveParams) (interface{}, error) {
	return r.userService.Delete(p.Context, argObject(p, "query"))
}

// argObject returns an input object argument, or an empty object when the
// argument was omitted
func argObject(p graphql.ResolveParams, name string) map[string]any {
	if obj, ok := p.Args[name].(map[string]interface{}); ok {
		return obj
	}
	return map[string]any{}
}

func toUserMaps(users []entity.User) []map[string]interface{} {
	out := make([]map[string]interface{}, len(users))
	for i, u := range users {
		m := map[string]interface{}{
			entity.FieldName:  u.Name,
			entity.FieldAge:   u.Age,
			entity.FieldEmail: u.Email,
			entity.FieldScore: u.Score,
		}
		if u.Active != nil {
			m[entity.FieldActive] = *u.Active
		}
		out[i] = m
	}
	return out
}
