// Package mailer implements the delivery transport on AWS SES v2.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/akarpov/fare-mailer/internal/dispatch"
)

const defaultRegion = "us-east-1"

// Config holds sender identity and credentials for the SES client.
type Config struct {
	From      string
	FromName  string
	Region    string
	AccessKey string
	SecretKey string
}

// SES sends mail through the AWS SES v2 API.
type SES struct {
	client *sesv2.Client
	from   string
}

// NewSES builds a transport with static credentials.
func NewSES(ctx context.Context, cfg Config) (*SES, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}

	return &SES{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

// Deliver sends one message. Attachments force a raw MIME payload since
// the simple content type cannot carry them.
func (s *SES) Deliver(ctx context.Context, msg *dispatch.Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
	}

	if len(msg.Attachments) == 0 {
		input.Content = &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		}
	} else {
		raw, err := buildRawMessage(s.from, msg)
		if err != nil {
			return fmt.Errorf("building raw message: %w", err)
		}
		input.Content = &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		}
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}

	return nil
}
