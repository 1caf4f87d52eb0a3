package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
)

type IDParams struct {
	ID int64 `binding:"required,gt=0" uri:"id"`
}

type PageParams struct {
	Skip  uint `form:"skip"`
	Limit uint `form:"limit"`
}

// page переводит параметры запроса в окно выборки. Нулевой limit заменяется значением по умолчанию,
// слишком большой - обрезается до MaxPageLimit.
func (p PageParams) page() repoargs.Page {
	limit := p.Limit
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return repoargs.Page{Offset: p.Skip, Limit: limit}
}

// bindID читает id из пути. Невалидный id завершает запрос со статусом 400.
func bindID(c *gin.Context) (int64, bool) {
	var params IDParams
	if err := c.ShouldBindUri(&params); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return 0, false
	}
	return params.ID, true
}

// bindJSON разбирает тело запроса. Нарушение правил валидации дает 422, ошибка разбора - 400.
func bindJSON(c *gin.Context, obj any) bool {
	if bindErr := c.ShouldBindJSON(obj); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			_ = c.AbortWithError(http.StatusUnprocessableEntity, valErrs).SetType(gin.ErrorTypePublic)
			return false
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// abortWithServiceErr переводит ошибку сервисного слоя в http статус. Текст доменных ошибок
// отдается клиенту, остальные ошибки скрываются.
func abortWithServiceErr(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		amountErr     *domain.InvalidAmountError
		payerErr      *domain.InvalidPayerError
		splitErr      *domain.InvalidSplitError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)

	var (
		status int
		public error
	)
	switch {
	case errors.As(err, &validationErr):
		status, public = http.StatusUnprocessableEntity, validationErr
	case errors.As(err, &amountErr):
		status, public = http.StatusUnprocessableEntity, amountErr
	case errors.As(err, &payerErr):
		status, public = http.StatusUnprocessableEntity, payerErr
	case errors.As(err, &splitErr):
		status, public = http.StatusUnprocessableEntity, splitErr
	case errors.As(err, &notFoundErr):
		status, public = http.StatusNotFound, notFoundErr
	case errors.As(err, &conflictErr):
		status, public = http.StatusConflict, conflictErr
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	_ = c.AbortWithError(status, public).SetType(gin.ErrorTypePublic)
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Root GET RootRoute.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Split Ledger API"})
}
