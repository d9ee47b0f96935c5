package controller

import (
	"errors"
	"net/http"

	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/web/entity"
	"github.com/acquisitions/api/web/middleware"
	"github.com/acquisitions/api/web/service"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	svc *service.UserService
}

func NewUserController(api *gin.RouterGroup, tokens *service.TokenService, users *service.UserService) *UserController {
	c := &UserController{svc: users}

	g := api.Group("/users")
	g.Use(middleware.AuthRequired(tokens))
	{
		g.GET("", c.list)
		g.GET("/:id", c.getById)
		g.PUT("/:id", c.update)
		// The route-level admin gate is the binding delete policy.
		g.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), c.delete)
	}

	return c
}

func (a *UserController) list(c *gin.Context) {
	logger.Info("getting users")

	users, err := a.svc.List()
	if err != nil {
		logger.Error("error fetching all users:", err)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, entity.UserList{
		Message: "successfully retrieved users",
		Users:   users,
		Count:   len(users),
	})
}

func (a *UserController) getById(c *gin.Context) {
	id, ok := parseUserId(c)
	if !ok {
		return
	}

	logger.Infof("getting user with id %d", id)

	user, err := a.svc.GetById(id)
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		logger.Error("error fetching user by id:", err)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, entity.UserEnvelope{
		Message: "successfully retrieved user",
		User:    user,
	})
}

type updateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Role  *string `json:"role" binding:"omitempty,oneof=user admin"`
}

func (a *UserController) update(c *gin.Context) {
	id, ok := parseUserId(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if req.Name == nil && req.Email == nil && req.Role == nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:   "Validation failed",
			Details: []entity.FieldError{{Field: "body", Message: "At least one field must be provided to update"}},
		})
		return
	}

	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	isAdmin := principal.IsAdmin()
	isOwner := principal.Id == id

	if !isAdmin && !isOwner {
		c.JSON(http.StatusForbidden, entity.ErrorResponse{
			Error:   "Forbidden",
			Message: "You can only update your own account",
		})
		return
	}
	if req.Role != nil && !isAdmin {
		c.JSON(http.StatusForbidden, entity.ErrorResponse{
			Error:   "Forbidden",
			Message: "Only admins can change user roles",
		})
		return
	}

	update := service.UserUpdate{Name: req.Name, Email: req.Email}
	if req.Role != nil {
		role := model.Role(*req.Role)
		update.Role = &role
	}

	logger.Infof("updating user %d by %s", id, principal.Email)

	user, err := a.svc.Update(id, update)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "User not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, entity.ErrorResponse{
			Error:   "Conflict",
			Message: "Email already in use",
		})
	case err != nil:
		logger.Error("error updating user:", err)
		respondInternal(c)
	default:
		c.JSON(http.StatusOK, entity.UserEnvelope{
			Message: "User updated successfully",
			User:    user,
		})
	}
}

func (a *UserController) delete(c *gin.Context) {
	id, ok := parseUserId(c)
	if !ok {
		return
	}

	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	// Unreachable for non-admins behind the route gate; kept so the
	// handler enforces its own policy if the route ever loosens.
	if !principal.IsAdmin() && principal.Id != id {
		c.JSON(http.StatusForbidden, entity.ErrorResponse{
			Error:   "Forbidden",
			Message: "You can only delete your own account",
		})
		return
	}

	logger.Infof("deleting user %d by %s", id, principal.Email)

	user, err := a.svc.Delete(id)
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		logger.Error("error deleting user:", err)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, entity.UserEnvelope{
		Message: "User deleted successfully",
		User:    user,
	})
}
