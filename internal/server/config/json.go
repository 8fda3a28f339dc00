package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/readnest/readnest/internal/flagx"
	"github.com/readnest/readnest/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	Addr                  string         `json:"addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	DataDir               string         `json:"data_dir"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	FetchTimeout          timex.Duration `json:"fetch_timeout"`
	MaxFeedEntries        int            `json:"max_feed_entries"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set, no JSON file is loaded. Fields absent from the file keep their
// current (default) values. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	// seed the DTO with current values so omitted keys do not reset fields
	c := &JsonConfig{
		Addr:                  config.Addr,
		DatabaseDSN:           config.DatabaseDSN,
		DataDir:               config.DataDir,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		FetchTimeout:          timex.Duration{Duration: config.FetchTimeout},
		MaxFeedEntries:        config.MaxFeedEntries,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.DatabaseDSN = c.DatabaseDSN
	config.DataDir = c.DataDir
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.FetchTimeout = time.Duration(c.FetchTimeout.Duration)
	config.MaxFeedEntries = c.MaxFeedEntries
}
