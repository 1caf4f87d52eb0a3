package service

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/splitledger/internal/domain"
)

const (
	entityUser    = "user"
	entityGroup   = "group"
	entityExpense = "expense"
)

// translateErr превращает ошибки репозитория в типизированные ошибки, которые транспорт переводит в статусы.
// Уже типизированные ошибки проходят без изменений.
func translateErr(err error, entity string, id int64) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return domain.NewNotFoundError(entity, id)
	case errors.Is(err, domain.ErrConflict):
		return domain.NewConflictError(fmt.Sprintf("%s %d was modified concurrently, retry the request", entity, id))
	default:
		return err
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(...domain.LedgerEvent) {}
