package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/secondmind/internal/flagx"
	"github.com/dmitrijs2005/secondmind/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "168h" and integer nanoseconds are accepted.
// Empty values do not override what is already set.
type FileConfig struct {
	EndpointAddrHTTP                  string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC                  string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                       string         `json:"database_dsn" yaml:"database_dsn"`
	LogLevel                          string         `json:"log_level" yaml:"log_level"`
	SecretKey                         string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration" yaml:"verification_token_validity_duration"`
	VerificationBaseURL               string         `json:"verification_base_url" yaml:"verification_base_url"`
	GoogleClientID                    string         `json:"google_client_id" yaml:"google_client_id"`
	SendGridAPIKey                    string         `json:"sendgrid_api_key" yaml:"sendgrid_api_key"`
	MailFrom                          string         `json:"mail_from" yaml:"mail_from"`
	MailFromName                      string         `json:"mail_from_name" yaml:"mail_from_name"`
	SummarizerURL                     string         `json:"summarizer_url" yaml:"summarizer_url"`
	SummarizerAPIKey                  string         `json:"summarizer_api_key" yaml:"summarizer_api_key"`
	RedisURL                          string         `json:"redis_url" yaml:"redis_url"`
	RateLimitRequests                 int            `json:"rate_limit_requests" yaml:"rate_limit_requests"`
	RateLimitWindow                   timex.Duration `json:"rate_limit_window" yaml:"rate_limit_window"`
	AllowedOrigins                    []string       `json:"allowed_origins" yaml:"allowed_origins"`
	OTelEndpoint                      string         `json:"otel_endpoint" yaml:"otel_endpoint"`
	SyncOwnerGuard                    *bool          `json:"sync_owner_guard" yaml:"sync_owner_guard"`
	S3RootUser                        string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword                    string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint                    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.VerificationTokenValidityDuration.Duration > 0 {
		config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	}
	setString(&config.VerificationBaseURL, c.VerificationBaseURL)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailFromName, c.MailFromName)
	setString(&config.SummarizerURL, c.SummarizerURL)
	setString(&config.SummarizerAPIKey, c.SummarizerAPIKey)
	setString(&config.RedisURL, c.RedisURL)
	if c.RateLimitRequests > 0 {
		config.RateLimitRequests = c.RateLimitRequests
	}
	if c.RateLimitWindow.Duration > 0 {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setString(&config.OTelEndpoint, c.OTelEndpoint)
	if c.SyncOwnerGuard != nil {
		config.SyncOwnerGuard = *c.SyncOwnerGuard
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
