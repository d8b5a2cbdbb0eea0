// internal/interfaces/http/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
)

// respondError maps a service error onto the wire. Error middleware is
// deliberately absent; handlers own their responses end to end.
func respondError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	c.JSON(httpErr.Status, gin.H{
		"error": httpErr.Message,
		"code":  httpErr.Code,
	})
}
