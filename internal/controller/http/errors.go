package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jrjohn/outreach-api/internal/domain/service"
	"github.com/jrjohn/outreach-api/internal/dto/response"
	"github.com/jrjohn/outreach-api/internal/middleware"
	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

func toAppError(err error) *apperrors.AppError {
	return service.ToAppError(err)
}

func writeError(ctx *gin.Context, appErr *apperrors.AppError) {
	ctx.AbortWithStatusJSON(appErr.Status, response.FromAppError(appErr, middleware.GetRequestID(ctx)))
}
