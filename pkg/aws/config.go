package aws

import (
	"context"

	"attendance-bot/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/sirupsen/logrus"
)

// NewAWSConfig creates a new AWS configuration, pointing to LocalStack when
// running locally with an endpoint set.
func NewAWSConfig(ctx context.Context, cfg *config.BotConfig) (aws.Config, error) {
	if cfg.IsLocalDev {
		logrus.Info("Local development mode detected. Routing AWS calls to LocalStack.")

		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.AWSEndpoint != "" {
				return aws.Endpoint{
					URL:           cfg.AWSEndpoint,
					SigningRegion: region,
					PartitionID:   "aws",
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})

		return awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(cfg.AWSRegion),
			awsConfig.WithEndpointResolverWithOptions(customResolver),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}

	// Standard credential chain (env, shared config, instance role).
	return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWSRegion))
}
