package txmanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	serialization := &pq.Error{Code: "40001", Message: "could not serialize access due to read/write dependencies among transactions"}

	// Ошибка коммита оборачивается через %w и остаётся распознаваемой
	wrapped := fmt.Errorf("txmanager: commit transaction: %w", serialization)
	assert.True(t, isSerializationFailure(wrapped))

	// Другие коды Postgres не повторяются
	unique := &pq.Error{Code: "23505"}
	assert.False(t, isSerializationFailure(fmt.Errorf("txmanager: commit transaction: %w", unique)))

	assert.False(t, isSerializationFailure(errors.New("connection refused")))
	assert.False(t, isSerializationFailure(nil))
}
