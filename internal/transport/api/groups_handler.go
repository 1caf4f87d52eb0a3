package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/splitledger/internal/service"
)

type GroupsHandler struct {
	groupSvs GroupServicer
}

func NewGroupsHandler(groupSvs GroupServicer) *GroupsHandler {
	return &GroupsHandler{
		groupSvs: groupSvs,
	}
}

type CreateGroupParams struct {
	Name    string  `binding:"required,max_bytes=255"  json:"name"`
	UserIDs []int64 `binding:"required,min=1,dive,gt=0" json:"user_ids"`
}

// UpdateGroupParams - переданный user_ids полностью заменяет список участников.
type UpdateGroupParams struct {
	Name    *string `binding:"omitempty,min=1,max_bytes=255" json:"name"`
	UserIDs []int64 `binding:"omitempty,dive,gt=0"           json:"user_ids"`
}

// Index GET GroupsRoute.
func (h *GroupsHandler) Index(c *gin.Context) {
	var params PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	groups, err := h.groupSvs.List(reqCtx, params.page())
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	response := make([]GroupResponse, len(groups))
	for i := range groups {
		response[i] = newGroupResponse(&groups[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create POST GroupsRoute.
func (h *GroupsHandler) Create(c *gin.Context) {
	var params CreateGroupParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	group, err := h.groupSvs.Create(reqCtx, service.CreateGroupArgs{Name: params.Name, MemberIDs: params.UserIDs})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGroupResponse(group))
}

// Show GET GroupRoute.
func (h *GroupsHandler) Show(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	group, err := h.groupSvs.Get(reqCtx, id)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}

// Update PUT GroupRoute.
func (h *GroupsHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var params UpdateGroupParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	group, err := h.groupSvs.Update(reqCtx, service.UpdateGroupArgs{ID: id, Name: params.Name, MemberIDs: params.UserIDs})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}

// Delete DELETE GroupRoute.
func (h *GroupsHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.groupSvs.Delete(reqCtx, id); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Group deleted successfully"})
}
