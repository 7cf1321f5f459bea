package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root is the upstream "is it alive" greeting on GET /.
func Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "eLearning server is running"})
}
