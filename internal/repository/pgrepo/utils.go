package pgrepo

import (
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
)

// safeConvertUintToInt32 безопасно конвертирует uint в int32. При выходе за диапазон возвращает ошибку.
func safeConvertUintToInt32(val uint) (int32, error) {
	if val > uint(math.MaxInt32) {
		return 0, fmt.Errorf("value is out of range: %d", val)
	}
	return int32(val), nil
}

func pageBounds(page repoargs.Page) (int32, int32, error) {
	offset, offsetErr := safeConvertUintToInt32(page.Offset)
	if offsetErr != nil {
		return 0, 0, fmt.Errorf("offset: %w", offsetErr)
	}
	limit, limitErr := safeConvertUintToInt32(page.Limit)
	if limitErr != nil {
		return 0, 0, fmt.Errorf("limit: %w", limitErr)
	}
	return offset, limit, nil
}

// Денежные колонки передаются текстом, чтобы драйвер не терял точность decimal.

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}

func parseNullDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil //nolint:nilnil
	}
	d, err := parseDecimal(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullDecimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func sortedCopy(ids []int64) []int64 {
	res := slices.Clone(ids)
	slices.Sort(res)
	return slices.Compact(res)
}
