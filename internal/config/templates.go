package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# stocklens configuration

[market]
# Exchange tried first: NSE or BSE
default_exchange = "NSE"
# Exchange tried when the default has no data
fallback_exchange = "BSE"
# Default lookback window in months (1-60)
lookback_months = 12

[data]
# Yahoo Finance chart API host
base_url = "https://query1.finance.yahoo.com"
# HTTP timeout per request in seconds
timeout_seconds = 30
# Retry attempts for transient fetch failures
retry_attempts = 3
# User-Agent header sent with data requests
user_agent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

[cache]
# Cache fetched candles in a local SQLite database
enabled = true
# Serve cached candles without refetching for this many hours
ttl_hours = 12

[logging]
# Log level: debug, info, warn, error
level = "info"
# Also write logs to a rotating file under the config directory
file = true
max_size_mb = 20
max_backups = 3
max_age_days = 30

[ui]
# Enable colored output
color_enabled = true
# Terminal chart dimensions
chart_width = 64
chart_height = 12
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
