package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkrylov/medvault/internal/flagx"
	"github.com/dkrylov/medvault/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "10m" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	BaseURL                     string         `json:"base_url"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	EncryptionKey               string         `json:"encryption_key"`
	SessionValidityDuration     timex.Duration `json:"session_validity_duration"`
	UploadTokenValidityDuration timex.Duration `json:"upload_token_validity_duration"`
	OTPValidityDuration         timex.Duration `json:"otp_validity_duration"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	SNSRegion                   string         `json:"sns_region"`
	TextractRegion              string         `json:"textract_region"`
	OCRPollInterval             timex.Duration `json:"ocr_poll_interval"`
	OCRPollTimeout              timex.Duration `json:"ocr_poll_timeout"`
	OpenAIAPIKey                string         `json:"openai_api_key"`
	OpenAIModel                 string         `json:"openai_model"`
	CORSOrigin                  string         `json:"cors_origin"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; when
// neither is set, no JSON file is loaded. Missing string fields and zero
// durations keep their current values. Unreadable or invalid files panic.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setDuration(&config.SessionValidityDuration, c.SessionValidityDuration)
	setDuration(&config.UploadTokenValidityDuration, c.UploadTokenValidityDuration)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SNSRegion, c.SNSRegion)
	setString(&config.TextractRegion, c.TextractRegion)
	setDuration(&config.OCRPollInterval, c.OCRPollInterval)
	setDuration(&config.OCRPollTimeout, c.OCRPollTimeout)
	setString(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&config.OpenAIModel, c.OpenAIModel)
	setString(&config.CORSOrigin, c.CORSOrigin)
}
