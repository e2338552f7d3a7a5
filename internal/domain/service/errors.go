package service

import (
	"errors"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/validation"
	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

// ToAppError classifies an error returned by UserService for transport
// layers. Validation errors carry their violations as details.
func ToAppError(err error) *apperrors.AppError {
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		return apperrors.Validation(validationErr.Violations).Wrap(err)
	}

	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var storeErr *dao.StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.Kind {
		case dao.KindConstraint:
			return apperrors.Conflict("duplicate key").Wrap(err)
		case dao.KindConnectivity:
			return apperrors.Unavailable("user store unavailable").Wrap(err)
		}
	}

	return apperrors.Internal().Wrap(err)
}
