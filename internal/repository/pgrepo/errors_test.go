package pgrepo

import (
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "unique", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "foreign key", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: domain.ErrRecordNotFound},
		{name: "serialization", err: &pgconn.PgError{Code: serializationFailureCode}, want: domain.ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: deadlockDetectedCode}, want: domain.ErrConflict},
		{name: "other", err: errors.New("boom"), want: domain.ErrUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := convertErr(tc.err, "get user %d", 1)
			require.ErrorIs(t, err, tc.want)
			require.Contains(t, err.Error(), "get user 1")
		})
	}

	require.NoError(t, convertErr(nil, "noop"))
}

func TestPageBounds(t *testing.T) {
	offset, limit, err := pageBounds(repoargs.Page{Offset: 20, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int32(20), offset)
	require.Equal(t, int32(10), limit)

	_, _, err = pageBounds(repoargs.Page{Offset: uint(math.MaxInt32) + 1, Limit: 10})
	require.ErrorContains(t, err, "offset")
}

func TestDecimalText(t *testing.T) {
	d, err := parseDecimal("12.34")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("12.34")))

	_, err = parseDecimal("abc")
	require.Error(t, err)

	nullable, err := parseNullDecimal(nil)
	require.NoError(t, err)
	require.Nil(t, nullable)

	require.Nil(t, nullDecimalText(nil))
	diff := decimal.RequireFromString("45.67").Sub(d)
	require.Equal(t, "33.33", *nullDecimalText(&diff))
}

func TestSortedCopy(t *testing.T) {
	ids := []int64{3, 1, 3, 2}
	require.Equal(t, []int64{1, 2, 3}, sortedCopy(ids))
	require.Equal(t, []int64{3, 1, 3, 2}, ids)
}
