package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "CATALOG_OPEN_LIKES", "JWT_ACCESS_TTL", "RABBITMQ_URL", "DB_MAX_CONNS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, StoragePostgres, c.StorageDriver)
	assert.False(t, c.OpenLikes)
	assert.Equal(t, time.Hour, c.AccessTTL)
	assert.Empty(t, c.RabbitMQURL)
	assert.Equal(t, int32(10), c.DBMaxConns)
	assert.Equal(t, "catalog.events", c.RabbitMQEventsQueue)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("CATALOG_OPEN_LIKES", "true")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("REDIS_ENABLED", "nope")

	c := Load()
	assert.Equal(t, StorageMongo, c.StorageDriver)
	assert.True(t, c.OpenLikes)
	assert.Equal(t, 15*time.Minute, c.AccessTTL)
	// invalid values fall back to defaults
	assert.Equal(t, int32(10), c.DBMaxConns)
	assert.True(t, c.RedisEnabled)
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "catalog", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/catalog?sslmode=disable", c.PostgresDSN())
}

func TestCORSOrigins(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())
	assert.Empty(t, (&Config{}).CORSOrigins())
}
