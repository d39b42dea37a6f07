package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassifiers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsPgDuplicateError(wrap("23505")))
	assert.False(t, IsPgDuplicateError(wrap("23503")))
	assert.True(t, IsPgForeignKeyError(wrap("23503")))
	assert.True(t, IsPgInvalidTextError(wrap("22P02")))
	assert.True(t, IsPgNoRowsError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsPgNoRowsError(errors.New("boom")))
}
