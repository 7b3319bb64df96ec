package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS",
		"SERVICE_NAME", "JWT_SECRET", "OTLP_ENDPOINT", "WORKER_GROUP", "WORKER_COUNT",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "shop-api", cfg.ServiceName)
	assert.Equal(t, "order-projector", cfg.WorkerGroup)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SERVICE_NAME", "shop-api-test")
	t.Setenv("WORKER_COUNT", "3")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "shop-api-test", cfg.ServiceName)
	assert.Equal(t, 3, cfg.WorkerCount)
}

func TestLoadSplitsAndTrimsBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,,")

	cfg := Load()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadIgnoresUnusableWorkerCount(t *testing.T) {
	for _, v := range []string{"junk", "-2", "0"} {
		t.Setenv("WORKER_COUNT", v)
		assert.Equal(t, 8, Load().WorkerCount, "WORKER_COUNT=%s", v)
	}
}
