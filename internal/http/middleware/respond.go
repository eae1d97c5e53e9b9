package middleware

import (
	"errors"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AbortWithError writes the fixed error body for err and stops the chain.
// Unexpected errors are logged and collapsed to a generic message.
func AbortWithError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if !apperr.IsExpected(err) {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}
	body := gin.H{"error": apperr.PublicMessage(err)}
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		body["fields"] = validationErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}
