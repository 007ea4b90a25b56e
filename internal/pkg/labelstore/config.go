package labelstore

import (
	"strings"

	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
)

// Config holds the S3-compatible storage settings for shipping labels.
type Config struct {
	Enabled         bool
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string
	KeyPrefix       string
}

// LoadConfigFromEnv reads the label store configuration from the environment.
func LoadConfigFromEnv() *Config {
	return &Config{
		Enabled:         env.GetEnv("LABEL_STORE_ENABLED", "false") == "true",
		Region:          env.GetEnv("LABEL_STORE_REGION", "ap-south-1"),
		Bucket:          env.GetEnv("LABEL_STORE_BUCKET", ""),
		AccessKeyID:     env.GetEnv("LABEL_STORE_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("LABEL_STORE_SECRET_ACCESS_KEY", ""),
		EndpointURL:     env.GetEnv("LABEL_STORE_ENDPOINT_URL", ""),
		KeyPrefix:       strings.Trim(env.GetEnv("LABEL_STORE_KEY_PREFIX", "labels"), "/"),
	}
}

// IsEnabled reports whether the label store is configured and switched on.
func (c *Config) IsEnabled() bool {
	return c.Enabled && c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}
