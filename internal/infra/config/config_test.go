package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/domain/shared/money"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("QUOTE_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageMode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "0.03", cfg.CardFeeRate.String())
	assert.Equal(t, "0.038", cfg.TaxRate.String())
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadMongoModeRequiresInfrastructure(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	require.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "")
	_, err = Load()
	require.ErrorContains(t, err, "KAFKA_BROKERS")

	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"TAX_RATE":       "1.5",
		"CARD_FEE_RATE":  "abc",
		"QUOTE_TIMEZONE": "Mars/Olympus",
		"RETRY_BACKOFF":  "1s,soon",
		"STORAGE_MODE":   "postgres",
		"QUOTE_CURRENCY": "EURO",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadTimezone(t *testing.T) {
	t.Setenv("QUOTE_TIMEZONE", "Europe/Lisbon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", cfg.Location.String())
}

func TestLoadNormalizesCurrency(t *testing.T) {
	t.Setenv("QUOTE_CURRENCY", " usd ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)

	t.Setenv("QUOTE_CURRENCY", "U5D")
	_, err = Load()
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}
