// Package sns implements the SMS delivery channel via AWS SNS. The identity
// is treated as an E.164 phone number when this channel is selected.
package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-verify-api/internal/config"
)

// Sender publishes verification codes as SMS messages. Satisfies
// delivery.Channel; Publish honors ctx, so the gateway's deadline actually
// cancels in-flight calls on this channel.
type Sender struct {
	client *sns.Client
}

// NewSender builds an SNS client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local
// instance.
func NewSender(cfg *config.Config) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Sender{client: sns.NewFromConfig(awsCfg, clientOpts...)}, nil
}

func (s *Sender) Transmit(ctx context.Context, identity, code string) error {
	msg := "Your verification code: " + code
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &identity,
		Message:     &msg,
	})
	return err
}
