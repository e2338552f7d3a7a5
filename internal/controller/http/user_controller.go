package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/domain/service"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
	"github.com/jrjohn/outreach-api/internal/middleware"
	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

// UserController handles the user CRUD endpoints
type UserController struct {
	userService service.UserService
	version     string
	logger      *zap.Logger
}

// NewUserController creates a new UserController instance
func NewUserController(userService service.UserService, app *config.AppConfig, logger *zap.Logger) *UserController {
	return &UserController{
		userService: userService,
		version:     app.Version,
		logger:      logger,
	}
}

// RegisterRoutes registers the user routes
func (c *UserController) RegisterRoutes(router gin.IRouter) {
	router.GET("/version", c.Version)
	router.POST("/create-user", c.Create)
	router.PUT("/read-users", c.Read)
	router.GET("/search-users", c.Search)
	router.PUT("/count-users", c.Count)
	router.PATCH("/update-users", c.Update)
	router.DELETE("/delete-users", c.Delete)
}

// Version returns the API version
// @Summary API version
// @Tags Users
// @Produce json
// @Success 200 {string} string
// @Router /version [get]
func (c *UserController) Version(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.version)
}

// Create stores a new user
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body entity.User true "User"
// @Success 200 {boolean} bool
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /create-user [post]
func (c *UserController) Create(ctx *gin.Context) {
	payload, ok := c.bindPayload(ctx)
	if !ok {
		return
	}

	created, err := c.userService.Create(ctx.Request.Context(), payload)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, created)
}

// Read returns every user matching the query body
// @Summary Read users
// @Tags Users
// @Accept json
// @Produce json
// @Param request body entity.UserQuery true "Query"
// @Success 200 {array} entity.User
// @Failure 400 {object} response.ErrorResponse
// @Router /read-users [put]
func (c *UserController) Read(ctx *gin.Context) {
	query, ok := c.bindPayload(ctx)
	if !ok {
		return
	}

	users, err := c.userService.Read(ctx.Request.Context(), query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// Search runs a full-text search over every user field
// @Summary Search users
// @Tags Users
// @Produce json
// @Param text query string true "Search text"
// @Success 200 {array} entity.User
// @Failure 400 {object} response.ErrorResponse
// @Router /search-users [get]
func (c *UserController) Search(ctx *gin.Context) {
	users, err := c.userService.Search(ctx.Request.Context(), ctx.Query("text"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// Count returns the number of users matching the query body
// @Summary Count users
// @Tags Users
// @Accept json
// @Produce json
// @Param request body entity.UserQuery true "Query"
// @Success 200 {integer} int
// @Failure 400 {object} response.ErrorResponse
// @Router /count-users [put]
func (c *UserController) Count(ctx *gin.Context) {
	query, ok := c.bindPayload(ctx)
	if !ok {
		return
	}

	count, err := c.userService.Count(ctx.Request.Context(), query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, count)
}

// Update applies the update to the first user matching the query
// @Summary Update users
// @Tags Users
// @Accept json
// @Produce json
// @Param request body object true "{query, update}"
// @Success 200 {boolean} bool
// @Failure 400 {object} response.ErrorResponse
// @Router /update-users [patch]
func (c *UserController) Update(ctx *gin.Context) {
	envelope, ok := c.bindPayload(ctx)
	if !ok {
		return
	}

	updated, err := c.userService.Update(ctx.Request.Context(), envelope)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// Delete removes every user matching the query body
// @Summary Delete users
// @Tags Users
// @Accept json
// @Produce json
// @Param request body entity.UserQuery true "Query"
// @Success 200 {boolean} bool
// @Failure 400 {object} response.ErrorResponse
// @Router /delete-users [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	query, ok := c.bindPayload(ctx)
	if !ok {
		return
	}

	deleted, err := c.userService.Delete(ctx.Request.Context(), query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, deleted)
}

// bindPayload reads the request body as a JSON object. It writes the error
// response itself and reports false when the body is unusable.
func (c *UserController) bindPayload(ctx *gin.Context) (map[string]any, bool) {
	body, err := ctx.GetRawData()
	if err != nil {
		c.respondError(ctx, apperrors.BadRequest("unreadable request body").Wrap(err))
		return nil, false
	}

	payload, err := validation.DecodePayload(body)
	if err != nil {
		c.respondError(ctx, err)
		return nil, false
	}
	return payload, true
}

func (c *UserController) respondError(ctx *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		c.logger.Error("User request failed",
			zap.String("route", ctx.FullPath()),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err),
		)
		_ = ctx.Error(err)
	}
	writeError(ctx, appErr)
}
