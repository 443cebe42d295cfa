package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skladtech/inventory_backend/models"
	"github.com/skladtech/inventory_backend/utils"
)

func SigninHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.SigninInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		info, err := models.Signin(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

// CreateUserHandler is admin only: registering staff accounts.
func CreateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetUserRoleFromContext(c.Request.Context())
		if models.UserRole(role) != models.UserRoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondDomainError(c, "handlers", "CreateUserHandler", err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// MeHandler returns the authenticated user's profile.
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		user, err := models.GetUser(c.Request.Context(), userId)
		if err != nil {
			respondDomainError(c, "handlers", "MeHandler", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
