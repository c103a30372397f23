package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor is the authenticated caller, as pinned in the request context
// by the auth middleware.
type Actor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	IsManager bool
}

func actorFrom(c *gin.Context) (Actor, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return Actor{}, false
	}
	companyID, ok := c.Get("companyID")
	if !ok {
		return Actor{}, false
	}
	return Actor{
		UserID:    userID.(uuid.UUID),
		CompanyID: companyID.(uuid.UUID),
		IsManager: c.GetBool("isManager"),
	}, true
}

// RequireActor aborts with 401 when no authenticated user is present.
func RequireActor(c *gin.Context) (Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized"))
		c.Abort()
	}
	return actor, ok
}

func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
