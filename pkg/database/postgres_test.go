package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitconnect/vault-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "vault", Password: "pw", Name: "study_vault", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=vault password=pw dbname=study_vault sslmode=disable", dsn)
}
