package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/service"
)

type ExpensesHandler struct {
	expenseSvs ExpenseServicer
}

func NewExpensesHandler(expenseSvs ExpenseServicer) *ExpensesHandler {
	return &ExpensesHandler{
		expenseSvs: expenseSvs,
	}
}

type SplitParams struct {
	UserID     int64           `binding:"required,gt=0" json:"user_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CreateExpenseParams - положительность суммы и корректность процентов проверяет сервисный слой.
type CreateExpenseParams struct {
	Description string           `binding:"required,max_bytes=255"  json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	PaidBy      int64            `binding:"required,gt=0"            json:"paid_by"`
	SplitType   domain.SplitType `binding:"required,split_type"      json:"split_type"`
	Splits      []SplitParams    `binding:"omitempty,dive"           json:"splits"`
}

type UpdateExpenseParams struct {
	Description *string           `binding:"omitempty,min=1,max_bytes=255" json:"description"`
	Amount      *decimal.Decimal  `json:"amount"`
	PaidBy      *int64            `binding:"omitempty,gt=0"                 json:"paid_by"`
	SplitType   *domain.SplitType `binding:"omitempty,split_type"           json:"split_type"`
	Splits      []SplitParams     `binding:"omitempty,dive"                 json:"splits"`
}

func toSplitInputs(params []SplitParams) []service.SplitInput {
	if params == nil {
		return nil
	}
	res := make([]service.SplitInput, len(params))
	for i, p := range params {
		res[i] = service.SplitInput{UserID: p.UserID, Percentage: p.Percentage}
	}
	return res
}

// bindCreate читает id группы из пути и тело запроса на создание расхода.
func bindCreate(c *gin.Context) (service.CreateExpenseArgs, bool) {
	groupID, ok := bindID(c)
	if !ok {
		return service.CreateExpenseArgs{}, false
	}
	var params CreateExpenseParams
	if !bindJSON(c, &params) {
		return service.CreateExpenseArgs{}, false
	}
	return service.CreateExpenseArgs{
		GroupID:     groupID,
		Description: params.Description,
		Amount:      params.Amount,
		PaidBy:      params.PaidBy,
		SplitType:   params.SplitType,
		Splits:      toSplitInputs(params.Splits),
	}, true
}

// Index GET GroupExpensesRoute.
func (h *ExpensesHandler) Index(c *gin.Context) {
	groupID, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	expenses, err := h.expenseSvs.ListByGroup(reqCtx, groupID)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	response := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		response[i] = newExpenseResponse(&expenses[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create POST GroupExpensesRoute.
func (h *ExpensesHandler) Create(c *gin.Context) {
	args, ok := bindCreate(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	expense, err := h.expenseSvs.Create(reqCtx, args)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, newExpenseResponse(expense))
}

// Preview POST ExpensePreviewRoute. Считает доли без сохранения расхода.
func (h *ExpensesHandler) Preview(c *gin.Context) {
	args, ok := bindCreate(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	shares, err := h.expenseSvs.Preview(reqCtx, args)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newShareResponses(shares))
}

// Show GET ExpenseRoute.
func (h *ExpensesHandler) Show(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	expense, err := h.expenseSvs.Get(reqCtx, id)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(expense))
}

// Update PUT ExpenseRoute.
func (h *ExpensesHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var params UpdateExpenseParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	expense, err := h.expenseSvs.Update(reqCtx, service.UpdateExpenseArgs{
		ID:          id,
		Description: params.Description,
		Amount:      params.Amount,
		PaidBy:      params.PaidBy,
		SplitType:   params.SplitType,
		Splits:      toSplitInputs(params.Splits),
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(expense))
}

// Delete DELETE ExpenseRoute.
func (h *ExpensesHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.expenseSvs.Delete(reqCtx, id); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}
