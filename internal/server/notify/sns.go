package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/dkrylov/medvault/internal/common"
	sc "github.com/dkrylov/medvault/internal/server/config"
)

type SNSSender struct {
	client *sns.Client
}

// NewSNSSender builds an SNS publisher. SMS delivery is unavailable in some
// regions, so the SNS region is configured separately from the bucket region.
func NewSNSSender(ctx context.Context, cfg *sc.Config) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *SNSSender) Send(ctx context.Context, phoneNumber string, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String(phoneNumber),
	})
	if err != nil {
		return fmt.Errorf("%w: sms publish: %v", common.ErrorExternalService, err)
	}
	return nil
}
