// Package awsx builds the AWS SDK configuration and service clients shared
// by the identity, booking, user and mail layers.
package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appcfg "github.com/joeydtaylor/terakoya-core/pkg/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newDynamoClient = func(cfg aws.Config, optFns ...func(*dynamodb.Options)) *dynamodb.Client {
		return dynamodb.NewFromConfig(cfg, optFns...)
	}
)

// LoadAWSConfig resolves region and credentials. Static credentials are used
// only when both key parts are set; otherwise the default chain applies.
func LoadAWSConfig(ctx context.Context, c *appcfg.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.AWS.Region),
	}
	if c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AWS.AccessKeyID,
			c.AWS.SecretAccessKey,
			"",
		)))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("aws config: %w", err)
	}
	return cfg, nil
}

// NewDynamoDB returns a DynamoDB client; a configured endpoint points it at
// DynamoDB Local.
func NewDynamoDB(awsCfg aws.Config, c *appcfg.Config) *dynamodb.Client {
	return newDynamoClient(awsCfg, func(o *dynamodb.Options) {
		if c.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.DynamoDB.Endpoint)
		}
	})
}

func NewCognito(awsCfg aws.Config) *cognitoidentityprovider.Client {
	return cognitoidentityprovider.NewFromConfig(awsCfg)
}

func NewSES(awsCfg aws.Config) *sesv2.Client {
	return sesv2.NewFromConfig(awsCfg)
}
