package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "wanderplan-api", cfg.App.Name)
				assert.Equal(t, StorePostgres, cfg.Store.Driver)
				assert.Equal(t, DispatchQueue, cfg.Dispatch.Mode)
				assert.Equal(t, "itinerary_jobs", cfg.RabbitMQ.Queue.Name)
				assert.Equal(t, 45*time.Second, cfg.Pipeline.StageTimeout)
				assert.Equal(t, 3, cfg.Pipeline.PollingIntervalSeconds)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/minimal_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, DispatchInline, cfg.Dispatch.Mode)
	assert.Equal(t, time.Hour, cfg.Store.JobTTL)
	assert.Equal(t, 5*time.Minute, cfg.Store.SweepInterval)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 2, cfg.Pipeline.PollingIntervalSeconds)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "wanderplan",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "itinerary_exchange"},
			Queue:    QueueConfig{Name: "itinerary_jobs"},
		},
		Store:    StoreConfig{Driver: StorePostgres, JobTTL: time.Hour, SweepInterval: time.Minute},
		Dispatch: DispatchConfig{Mode: DispatchQueue},
		Worker:   WorkerConfig{Concurrency: 4},
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantErr   bool
		errString string
	}{
		{
			name:   "valid queue config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid inline memory config",
			mutate: func(c *Config) {
				c.Store.Driver = StoreMemory
				c.Dispatch.Mode = DispatchInline
				c.Database = DatabaseConfig{}
				c.RabbitMQ = RabbitMQConfig{}
			},
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "unknown dispatch mode",
			mutate:    func(c *Config) { c.Dispatch.Mode = "cron" },
			wantErr:   true,
			errString: "invalid dispatch mode",
		},
		{
			name: "queue dispatch with memory store",
			mutate: func(c *Config) {
				c.Store.Driver = StoreMemory
			},
			wantErr:   true,
			errString: "requires the \"postgres\" store driver",
		},
		{
			name:      "unknown store driver",
			mutate:    func(c *Config) { c.Store.Driver = "sqlite" },
			wantErr:   true,
			errString: "invalid store driver",
		},
		{
			name:      "postgres store without host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "postgres store without database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			wantErr:   true,
			errString: "database name is required",
		},
		{
			name:      "queue dispatch without rabbitmq host",
			mutate:    func(c *Config) { c.RabbitMQ.Host = "" },
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name:      "queue dispatch without exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "queue dispatch without queue name",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			wantErr:   true,
			errString: "rabbitmq queue name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.ValidateWorkerConfig())

	noConcurrency := validConfig()
	noConcurrency.Worker.Concurrency = 0
	require.ErrorContains(t, noConcurrency.ValidateWorkerConfig(), "concurrency")

	memStore := validConfig()
	memStore.Store.Driver = StoreMemory
	require.ErrorContains(t, memStore.ValidateWorkerConfig(), "postgres")
}
