package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-management-api/internal/application"
	repo "github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/pkg/response"
)

// writeServiceError maps service-layer errors onto HTTP statuses:
// 404 not found, 409 duplicate, 401 invalid credentials / not owner,
// 400 file upload problems, 500 everything else.
func writeServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrDuplicateEmail), errors.Is(err, repo.ErrDuplicateUsername):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, userapp.ErrInvalidCredentials), errors.Is(err, userapp.ErrNotOwner):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, userapp.ErrEmptyFile), errors.Is(err, userapp.ErrNotAnImage):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
