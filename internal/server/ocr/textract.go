package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/dkrylov/medvault/internal/common"
	sc "github.com/dkrylov/medvault/internal/server/config"
)

type TextractClient struct {
	client *textract.Client
	bucket string
}

func NewTextractClient(ctx context.Context, cfg *sc.Config) (*TextractClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.TextractRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &TextractClient{
		client: textract.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

func (c *TextractClient) Submit(ctx context.Context, key string) (string, error) {
	out, err := c.client.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(c.bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: start text detection for %s: %v", common.ErrorExternalService, key, err)
	}

	return aws.ToString(out.JobId), nil
}

func (c *TextractClient) Poll(ctx context.Context, jobID string) (*JobResult, error) {
	var sb strings.Builder
	var nextToken *string

	for {
		out, err := c.client.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId:     aws.String(jobID),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get text detection %s: %v", common.ErrorExternalService, jobID, err)
		}

		switch out.JobStatus {
		case types.JobStatusInProgress:
			return &JobResult{Status: JobInProgress}, nil
		case types.JobStatusSucceeded, types.JobStatusPartialSuccess:
			for _, block := range out.Blocks {
				if block.BlockType == types.BlockTypeLine {
					sb.WriteString(aws.ToString(block.Text))
					sb.WriteString("\n")
				}
			}
			if out.NextToken == nil {
				return &JobResult{Status: JobSucceeded, Text: sb.String()}, nil
			}
			nextToken = out.NextToken
		default:
			return &JobResult{Status: JobFailed}, nil
		}
	}
}
