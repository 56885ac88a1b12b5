package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first, without overriding variables already
// present in the environment.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.BaseURL, "BASE_URL")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.EncryptionKey, "ENCRYPTION_KEY")
	setDuration(&config.SessionValidityDuration, "SESSION_VALIDITY")
	setDuration(&config.UploadTokenValidityDuration, "UPLOAD_TOKEN_VALIDITY")
	setDuration(&config.OTPValidityDuration, "OTP_VALIDITY")
	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.SNSRegion, "SNS_REGION")
	setString(&config.TextractRegion, "TEXTRACT_REGION")
	setDuration(&config.OCRPollInterval, "OCR_POLL_INTERVAL")
	setDuration(&config.OCRPollTimeout, "OCR_POLL_TIMEOUT")
	setString(&config.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&config.OpenAIModel, "OPENAI_MODEL")
	setString(&config.CORSOrigin, "CORS_ORIGIN")
}
