package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "shoplens/internal/errors"
)

// EnsureDataset is middleware that answers 503 before any handler runs when
// the dataset cannot be loaded. load is expected to be cheap once the dataset
// is cached.
func EnsureDataset(load func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if load == nil {
			c.Next()
			return
		}

		if err := load(c.Request.Context()); err != nil {
			log.Printf("[EnsureDataset] Dataset unavailable for %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "dataset unavailable: " + err.Error(),
				"code":  apperrors.GetCode(err),
			})
			return
		}

		c.Next()
	}
}
