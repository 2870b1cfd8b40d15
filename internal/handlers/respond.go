package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/middleware"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

// Every response is HTTP 200 with a success flag, except for
// authentication failures, which the auth middleware answers with 401.

func ok(c *gin.Context, payload models.Envelope) {
	c.JSON(http.StatusOK, models.Success(payload))
}

func fail(c *gin.Context, err error) {
	if services.KindOf(err) == services.KindInternal {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, models.Failure(services.Message(err)))
}

func failMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.Failure(message))
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		failMessage(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		failMessage(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// actor is the authenticated user. Routes using it sit behind
// AuthMiddleware.
func actor(c *gin.Context) int64 {
	id, _ := middleware.UserID(c)
	return id
}
