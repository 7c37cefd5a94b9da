package api

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, EventsNone, cfg.EventsDriver)
	require.Equal(t, 30*time.Second, cfg.MenuCacheTTL)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 10*time.Minute, cfg.ReadyBuffer)
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "canteen.orders", cfg.KafkaTopic)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("EVENTS_DRIVER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MENU_CACHE_TTL", "2m")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("ORDER_READY_BUFFER_MINUTES", "0")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr())
	require.True(t, cfg.TemporalDisabled)
	require.Equal(t, EventsKafka, cfg.EventsDriver)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Minute, cfg.MenuCacheTTL)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Zero(t, cfg.ReadyBuffer)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("EVENTS_DRIVER", "carrier-pigeon")
	t.Setenv("SESSION_TTL_HOURS", "0")

	_, err := loadConfig(viper.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "EVENTS_DRIVER")
	require.Contains(t, err.Error(), "SESSION_TTL_HOURS")
}
