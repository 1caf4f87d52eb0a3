package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/splitledger/internal/service"
)

type UsersHandler struct {
	userSvs UserServicer
}

func NewUsersHandler(userSvs UserServicer) *UsersHandler {
	return &UsersHandler{
		userSvs: userSvs,
	}
}

type CreateUserParams struct {
	Name  string `binding:"required,max_bytes=255"       json:"name"`
	Email string `binding:"required,email,max_bytes=255" json:"email"`
}

type UpdateUserParams struct {
	Name  *string `binding:"omitempty,min=1,max_bytes=255" json:"name"`
	Email *string `binding:"omitempty,email,max_bytes=255" json:"email"`
}

// Index GET UsersRoute.
func (h *UsersHandler) Index(c *gin.Context) {
	var params PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	users, err := h.userSvs.List(reqCtx, params.page())
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create POST UsersRoute.
func (h *UsersHandler) Create(c *gin.Context) {
	var params CreateUserParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userSvs.Create(reqCtx, service.CreateUserArgs{Name: params.Name, Email: params.Email})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Show GET UserRoute.
func (h *UsersHandler) Show(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userSvs.Get(reqCtx, id)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Update PUT UserRoute. Не переданные поля сохраняют текущее значение.
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var params UpdateUserParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userSvs.Update(reqCtx, service.UpdateUserArgs{ID: id, Name: params.Name, Email: params.Email})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Delete DELETE UserRoute.
func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.userSvs.Delete(reqCtx, id); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
