package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/jrjohn/outreach-api/internal/domain/entity"
)

// Schema represents the GraphQL schema
type Schema struct {
	schema graphql.Schema
}

// userInputFields are nullable so that missing or null values reach the
// validation layer and are reported like any other violation
func userInputFields() graphql.InputObjectConfigFieldMap {
	return graphql.InputObjectConfigFieldMap{
		entity.FieldName:   &graphql.InputObjectFieldConfig{Type: graphql.String},
		entity.FieldAge:    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		entity.FieldEmail:  &graphql.InputObjectFieldConfig{Type: graphql.String},
		entity.FieldActive: &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		entity.FieldScore:  &graphql.InputObjectFieldConfig{Type: graphql.Float},
	}
}

// BuildSchema builds the GraphQL schema
func BuildSchema(resolver *Resolver) (*Schema, error) {
	// User type
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			entity.FieldName: &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
			},
			entity.FieldAge: &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
			},
			entity.FieldEmail: &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
			},
			entity.FieldActive: &graphql.Field{
				Type: graphql.Boolean,
			},
			entity.FieldScore: &graphql.Field{
				Type: graphql.NewNonNull(graphql.Float),
			},
		},
	})

	userInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UserInput",
		Fields: userInputFields(),
	})

	userQueryInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UserQueryInput",
		Fields: userInputFields(),
	})

	userUpdateInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UserUpdateInput",
		Fields: userInputFields(),
	})

	usersType := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType)))

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"version": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: resolver.Version,
			},
			"users": &graphql.Field{
				Type: usersType,
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: userQueryInput},
				},
				Resolve: resolver.traced("users", resolver.Users),
			},
			"searchUsers": &graphql.Field{
				Type: usersType,
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: resolver.traced("searchUsers", resolver.SearchUsers),
			},
			"countUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: userQueryInput},
				},
				Resolve: resolver.traced("countUsers", resolver.CountUsers),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInput)},
				},
				Resolve: resolver.traced("createUser", resolver.CreateUser),
			},
			"updateUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"query":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(userQueryInput)},
					"update": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userUpdateInput)},
				},
				Resolve: resolver.traced("updateUsers", resolver.UpdateUsers),
			},
			"deleteUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userQueryInput)},
				},
				Resolve: resolver.traced("deleteUsers", resolver.DeleteUsers),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return nil, err
	}

	return &Schema{schema: schema}, nil
}

// Schema returns the underlying GraphQL schema
func (s *Schema) Schema() graphql.Schema {
	return s.schema
}
