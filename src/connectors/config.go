package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QuoteBaseURL string `envconfig:"QUOTE_BASE_URL" default:"https://query1.finance.yahoo.com"`
	// QuoteSuffix is the exchange suffix appended to raw instrument names
	// before querying, e.g. ".NS" for NSE-listed scrips.
	QuoteSuffix    string        `envconfig:"QUOTE_SUFFIX" default:".NS"`
	QuoteCacheTTL  time.Duration `envconfig:"QUOTE_CACHE_TTL" default:"15s"`
	QuoteRateLimit float64       `envconfig:"QUOTE_RATE_LIMIT" default:"5"`
	QuoteRateBurst int           `envconfig:"QUOTE_RATE_BURST" default:"5"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
