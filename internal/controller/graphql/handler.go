package graphql

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/middleware"
)

// Handler serves the GraphQL endpoint over POST and GET
type Handler struct {
	schema *Schema
	path   string
	logger *zap.Logger
}

// NewHandler creates a new GraphQL handler
func NewHandler(schema *Schema, cfg *config.GraphQLConfig, logger *zap.Logger) *Handler {
	return &Handler{
		schema: schema,
		path:   cfg.Path,
		logger: logger,
	}
}

// GraphQLRequest is the standard GraphQL-over-HTTP request body
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

var (
	errInvalidBody      = errors.New("invalid request body")
	errInvalidVariables = errors.New("invalid variables")
	errMissingQuery     = errors.New("missing query")
)

// RegisterRoutes registers the GraphQL route
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST(h.path, h.serve)
	router.GET(h.path, h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": err.Error()}},
		})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema.Schema(),
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request.Context(),
	})

	if result.HasErrors() {
		h.logger.Debug("GraphQL request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(result.Errors)),
			zap.String("request_id", middleware.RequestIDFromContext(c.Request.Context())),
		)
	}

	c.JSON(http.StatusOK, result)
}

// parseRequest reads a POST JSON body, or the query string of a GET
func parseRequest(c *gin.Context) (GraphQLRequest, error) {
	var req GraphQLRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, errInvalidBody
		}
	} else {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return req, errInvalidVariables
			}
		}
	}

	if req.Query == "" {
		return req, errMissingQuery
	}
	return req, nil
}
