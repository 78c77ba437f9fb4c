package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophdrive/internal/flagx"
	"github.com/dmitrijs2005/gophdrive/internal/timex"
)

// JsonConfig mirrors Config for JSON files. PresignExpiry is a
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddress        string         `json:"http_address"`
	MetadataBackend    string         `json:"metadata_backend"`
	DatabaseDSN        string         `json:"database_dsn"`
	BadgerDir          string         `json:"badger_dir"`
	BlobBackend        string         `json:"blob_backend"`
	BlobRoot           string         `json:"blob_root"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	PresignExpiry      timex.Duration `json:"presign_expiry"`
	SecretKey          string         `json:"secret_key"`
	CascadeConcurrency int            `json:"cascade_concurrency"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config. Fields
// absent from the file keep their current value. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BadgerDir, c.BadgerDir)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.BlobRoot, c.BlobRoot)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.PresignExpiry.Duration > 0 {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
	if c.CascadeConcurrency > 0 {
		config.CascadeConcurrency = c.CascadeConcurrency
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
