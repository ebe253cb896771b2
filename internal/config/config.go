package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`

	// LogChatID is the operator chat for audit messages. Zero disables
	// operator notifications without affecting anything else.
	LogChatID int64 `envconfig:"LOG_CHAT_ID" default:"0"`

	// EnableReader turns on the inbound message loop (registration
	// commands). The outage checks run regardless.
	EnableReader bool `envconfig:"ENABLE_READER" default:"false"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"csv"` // csv|sqlite
	DataPath    string `envconfig:"DATA_PATH" default:"./data/userdata.csv"`

	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"1h"`
	TZ            string        `envconfig:"TZ" default:"Europe/Belgrade"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz

	// Ordered per-day power outage listings; the list index is the number
	// of days until the outage.
	PowerOutageURLs []string `envconfig:"POWER_OUTAGE_URLS" default:"http://www.epsdistribucija.rs/planirana-iskljucenja-beograd/Dan_0_Iskljucenja.htm,http://www.epsdistribucija.rs/planirana-iskljucenja-beograd/Dan_1_Iskljucenja.htm,http://www.epsdistribucija.rs/planirana-iskljucenja-beograd/Dan_2_Iskljucenja.htm,http://www.epsdistribucija.rs/planirana-iskljucenja-beograd/Dan_3_Iskljucenja.htm"`

	WaterOutageURLs          []string `envconfig:"WATER_OUTAGE_URLS" default:"https://www.bvk.rs/planirani-radovi/"`
	WaterUnplannedOutageURLs []string `envconfig:"WATER_UNPLANNED_OUTAGE_URLS" default:"https://www.bvk.rs/kvarovi-na-mrezi/"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
