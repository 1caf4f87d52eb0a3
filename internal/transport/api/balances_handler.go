package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BalancesHandler struct {
	svs BalanceServicer
}

func NewBalancesHandler(svs BalanceServicer) *BalancesHandler {
	return &BalancesHandler{
		svs: svs,
	}
}

// Group GET GroupBalancesRoute.
func (b *BalancesHandler) Group(c *gin.Context) {
	groupID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balances, err := b.svs.GroupBalances(reqCtx, groupID)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newBalanceResponses(balances))
}

// User GET UserBalancesRoute. Балансы пользователя, сгруппированные по группам.
func (b *BalancesHandler) User(c *gin.Context) {
	userID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	groups, err := b.svs.UserBalances(reqCtx, userID)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	response := make([]GroupBalancesResponse, len(groups))
	for i, group := range groups {
		response[i] = GroupBalancesResponse{
			GroupID:   group.GroupID,
			GroupName: group.GroupName,
			Balances:  newBalanceResponses(group.Balances),
		}
	}
	c.JSON(http.StatusOK, response)
}
