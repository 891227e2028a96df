package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/services"
)

type UserHandler struct {
	userService    services.UserService
	cascadeService services.CascadeService
	ownership      services.OwnershipService
}

func NewUserHandler(
	userService services.UserService,
	cascadeService services.CascadeService,
	ownership services.OwnershipService,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		cascadeService: cascadeService,
		ownership:      ownership,
	}
}

func (uh *UserHandler) GetProfile(c *gin.Context) {
	profile, err := uh.userService.GetProfile(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"profile": profile})
}

func (uh *UserHandler) GetByID(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid user id"))
		return
	}
	user, err := uh.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) GetByUsername(c *gin.Context) {
	user, err := uh.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) GetByRole(c *gin.Context) {
	users, err := uh.userService.GetByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

func (uh *UserHandler) GetAll(c *gin.Context) {
	users, err := uh.userService.GetAll(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

func (uh *UserHandler) Search(c *gin.Context) {
	users, err := uh.userService.Search(c.Request.Context(), c.Query("username"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

func (uh *UserHandler) SetRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid user id"))
		return
	}
	user, err := uh.userService.SetRole(c.Request.Context(), targetID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) ResetRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid user id"))
		return
	}
	user, err := uh.userService.ResetRole(c.Request.Context(), targetID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) UpdateUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	user, err := uh.userService.UpdateUsername(c.Request.Context(), req.Username)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

// Delete runs the cascading delete. The summary is returned even on partial
// failure so the caller can see which items were left behind.
func (uh *UserHandler) Delete(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid user id"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request data"))
		return
	}

	summary, err := uh.cascadeService.DeleteUser(c.Request.Context(), targetID, rd.UserID, rd.Role)
	if err != nil {
		status := http.StatusBadRequest
		code := "bad_request"
		switch {
		case errors.Is(err, services.ErrNotFound):
			status, code = http.StatusNotFound, "not_found"
		case errors.Is(err, services.ErrForbidden):
			status, code = http.StatusForbidden, "forbidden"
		case errors.Is(err, services.ErrConflict):
			status, code = http.StatusConflict, "conflict"
		case errors.Is(err, services.ErrRemoteFailure):
			status, code = http.StatusBadGateway, "remote_failure"
		}
		body := gin.H{"error": APIError{Message: err.Error(), Code: code}}
		if summary != nil {
			body["summary"] = summary
		}
		c.JSON(status, body)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

func (uh *UserHandler) VerifyOwnership(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid user id"))
		return
	}
	report, err := uh.ownership.Verify(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report, "consistent": report.Consistent()})
}
