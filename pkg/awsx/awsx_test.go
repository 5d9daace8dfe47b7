package awsx

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "github.com/joeydtaylor/terakoya-core/pkg/config"
)

func testConfig() *appcfg.Config {
	c := &appcfg.Config{}
	c.AWS.Region = "ap-northeast-1"
	return c
}

func TestLoadAWSConfig_RegionAndStaticCreds(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region}, nil
	}

	c := testConfig()
	c.AWS.AccessKeyID = "AKIA"
	c.AWS.SecretAccessKey = "secret"

	cfg, err := LoadAWSConfig(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "ap-northeast-1", cfg.Region)
	require.NotNil(t, lo.Credentials)

	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}

func TestLoadAWSConfig_DefaultChain(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}

	_, err := LoadAWSConfig(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, lo.Credentials)
}

func TestLoadAWSConfig_Error(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}
	_, err := LoadAWSConfig(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewDynamoDB_Endpoint(t *testing.T) {
	orig := newDynamoClient
	t.Cleanup(func() { newDynamoClient = orig })

	var captured *string
	newDynamoClient = func(cfg aws.Config, optFns ...func(*dynamodb.Options)) *dynamodb.Client {
		var o dynamodb.Options
		for _, fn := range optFns {
			fn(&o)
		}
		captured = o.BaseEndpoint
		return &dynamodb.Client{}
	}

	c := testConfig()
	c.DynamoDB.Endpoint = "http://localhost:8000"
	NewDynamoDB(aws.Config{}, c)
	require.NotNil(t, captured)
	assert.Equal(t, "http://localhost:8000", *captured)

	captured = nil
	NewDynamoDB(aws.Config{}, testConfig())
	assert.Nil(t, captured)
}
