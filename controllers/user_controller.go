package controllers

import (
	"net/http"
	"strings"

	"freshfetch/models"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetAllUsers godoc
// @Summary List users
// @Description Staff see every user; other roles only see themselves
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param email query string false "Exact email"
// @Param role query string false "Role" Enums(user, manager, admin)
// @Param search query string false "Name or email substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.PaginationResponse
// @Router /users [get]
func (ctrl *UserController) GetAllUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	filter := models.UserFilter{
		Email:  strings.TrimSpace(c.Query("email")),
		Role:   c.Query("role"),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   queryPage(c),
	}

	users, total, err := ctrl.userService.List(c.Request.Context(), p, filter)
	if err != nil {
		handleError(c, err)
		return
	}
	paginated(c, "Users retrieved", users, filter.Page, total)
}

// GetUserByID godoc
// @Summary Get user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.Response{data=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (ctrl *UserController) GetUserByID(c *gin.Context) {
	user, err := ctrl.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved", user)
}

// CreateUser godoc
// @Summary Create user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "User"
// @Success 201 {object} models.Response{data=models.User}
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (ctrl *UserController) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	user, err := ctrl.userService.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created", user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.User}
// @Router /users/{id} [patch]
func (ctrl *UserController) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	user, err := ctrl.userService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated", user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.Response
// @Router /users/{id} [delete]
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := ctrl.userService.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted", nil)
}
