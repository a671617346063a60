package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewSystemRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewSystemRepository(pool)
	assert.NotNil(t, repo)
}
