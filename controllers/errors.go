package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/apperrors"
	"hotel-ops/utils"
)

// respondError renders err with the status code of its kind. Dependency
// failures hide the underlying cause from the client.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Dependency("internal error", err)
	}
	_ = c.Error(err)

	body := utils.ErrorBody{Code: string(appErr.Code), Message: appErr.Message}
	if appErr.Conflict != nil {
		body.Conflict = appErr.Conflict
	}
	utils.JSONError(c, statusFor(appErr.Kind), body)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, utils.ErrorBody{
		Code:    string(apperrors.ErrCodeValidation),
		Message: "invalid request payload: " + err.Error(),
	})
}
