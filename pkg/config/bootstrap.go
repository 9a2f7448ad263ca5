package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

// BootstrapConfigFile is the file name looked up inside the config directory.
const BootstrapConfigFile = "dashboard_config.yaml"

// BootstrapConfig holds the startup configuration loaded from dashboard_config.yaml
type BootstrapConfig struct {
	Logging    LoggingConfig     `yaml:"logging"`
	Server     ServerConfig      `yaml:"server"`
	Playback   PlaybackConfig    `yaml:"playback"`
	Session    SessionConfig     `yaml:"session"`
	Data       DataConfig        `yaml:"data"`
	Datasets   []telemetry.Entry `yaml:"datasets"`
	ZeroMQ     ZeroMQBootstrap   `yaml:"zeromq"`
	Processing ProcessingConfig  `yaml:"processing"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host        string `yaml:"host"`
	HTTPPort    int    `yaml:"http_port"`
	OpenBrowser bool   `yaml:"open_browser"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// PlaybackConfig controls the play/pause cadence.
type PlaybackConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// SessionConfig controls how long an idle browser session keeps its dataset.
type SessionConfig struct {
	IdleTimeoutMinutes   int `yaml:"idle_timeout_minutes"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

// DataConfig holds data directory settings from bootstrap
type DataConfig struct {
	// Directory overrides the embedded dataset files when set.
	Directory  string `yaml:"directory,omitempty"`
	LayoutFile string `yaml:"layout_file"`
}

// ZeroMQBootstrap holds ZeroMQ settings. An empty publish address disables it.
type ZeroMQBootstrap struct {
	PublishBindAddress string `yaml:"publish_bind_address"`
	RequestBindAddress string `yaml:"request_bind_address"`
}

// ProcessingConfig sizes the frame publishing pool.
type ProcessingConfig struct {
	PublishWorkers int `yaml:"publish_workers"`
	QueueSize      int `yaml:"queue_size"`
}

// Enabled reports whether frames should be fanned out over ZeroMQ.
func (z ZeroMQBootstrap) Enabled() bool {
	return z.PublishBindAddress != ""
}

// LoadBootstrapConfig loads the bootstrap configuration from dashboard_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapConfigFile)

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.Data.LayoutFile == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.layout_file")
	}
	if bootstrapCfg.ZeroMQ.Enabled() && bootstrapCfg.ZeroMQ.RequestBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.request_bind_address")
	}
	for i, ds := range bootstrapCfg.Datasets {
		if ds.Name == "" || ds.File == "" {
			return nil, fmt.Errorf("missing required field in bootstrap config: datasets[%d].name/file", i)
		}
	}

	// Relative paths are resolved against the config directory.
	if !filepath.IsAbs(bootstrapCfg.Data.LayoutFile) {
		bootstrapCfg.Data.LayoutFile = filepath.Join(configDir, bootstrapCfg.Data.LayoutFile)
	}
	if bootstrapCfg.Data.Directory != "" && !filepath.IsAbs(bootstrapCfg.Data.Directory) {
		bootstrapCfg.Data.Directory = filepath.Join(configDir, bootstrapCfg.Data.Directory)
	}

	bootstrapCfg.applyDefaults()
	return &bootstrapCfg, nil
}

func (c *BootstrapConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8501
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 200
	}
	if c.Playback.IntervalMs <= 0 {
		c.Playback.IntervalMs = 50
	}
	if c.Session.IdleTimeoutMinutes <= 0 {
		c.Session.IdleTimeoutMinutes = 30
	}
	if c.Session.SweepIntervalSeconds <= 0 {
		c.Session.SweepIntervalSeconds = 60
	}
	if len(c.Datasets) == 0 {
		c.Datasets = telemetry.DefaultEntries()
	}
	if c.Processing.PublishWorkers <= 0 {
		c.Processing.PublishWorkers = 1
	}
	if c.Processing.QueueSize <= 0 {
		c.Processing.QueueSize = 256
	}
}
