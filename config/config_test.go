package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKafkaBrokerList(t *testing.T) {
	cfg := &Configuration{KafkaBrokers: " b1:9092, ,b2:9092 "}
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokerList())

	empty := &Configuration{}
	assert.Empty(t, empty.KafkaBrokerList())
}

func TestDurations(t *testing.T) {
	cfg := &Configuration{JwtExpiryHours: 168, MLApiTimeoutSeconds: 10}
	assert.Equal(t, 7*24*time.Hour, cfg.JwtExpiry())
	assert.Equal(t, 10*time.Second, cfg.MLApiTimeout())
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "does-not-exist")
	t.Setenv("MONGODB_CONNECTION_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg := NewConfig()
	if assert.NotNil(t, cfg) {
		assert.Equal(t, "perishpro", cfg.MongoDB_DBName)
		assert.Equal(t, 10, cfg.MLApiTimeoutSeconds)
		assert.Equal(t, 20, cfg.PriceHistoryLimit)
	}
}
