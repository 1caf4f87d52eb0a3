package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/splitledger/internal/domain"
)

const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// convertErr приводит ошибку драйвера к виду сервисного слоя. Результат оборачивает одну из ошибок:
//   - domain.ErrRecordNotFound для pgx.ErrNoRows и нарушений внешнего ключа;
//   - domain.ErrDuplicateKey для нарушений уникальности;
//   - domain.ErrConflict для ошибок сериализации и дедлоков;
//   - domain.ErrUnknown во всех остальных случаях.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	errType := domain.ErrUnknown

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrRecordNotFound
		case serializationFailureCode, deadlockDetectedCode:
			errType = domain.ErrConflict
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
