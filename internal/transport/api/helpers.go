package api

import (
	"strconv"

	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 20

func getUserIDFromContext(c *gin.Context) int64 {
	id, _ := c.Get(middlewares.CurrentUserIDKey)
	userID, _ := id.(int64)
	return userID
}

func getPageFromQuery(c *gin.Context) repoargs.Page {
	number, _ := strconv.ParseUint(c.DefaultQuery("page", "1"), 10, 32)
	limit, _ := strconv.ParseUint(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)), 10, 32)
	if number == 0 {
		number = 1
	}
	if limit == 0 || limit > 100 {
		limit = defaultPageLimit
	}
	return repoargs.Page{Number: uint(number), Limit: uint(limit)}
}

func getIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
