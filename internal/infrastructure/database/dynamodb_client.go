package database

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBSettings are the connection settings for DynamoDB or DynamoDB Local.
type DynamoDBSettings struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the service endpoint, e.g. http://dynamodb:8000.
	Endpoint string
}

// ConnectDynamoDB creates a DynamoDB client.
//
// Local DynamoDB does not validate credentials, but the AWS SDK requires them,
// so static "local" credentials are used when none are given.
func ConnectDynamoDB(ctx context.Context, s DynamoDBSettings) (*dynamodb.Client, error) {
	cfg, err := NewDynamoDBConfig(ctx, s)
	if err != nil {
		return nil, err
	}

	var optFns []func(*dynamodb.Options)
	if s.Endpoint != "" {
		endpoint := s.Endpoint
		optFns = append(optFns, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return dynamodb.NewFromConfig(cfg, optFns...), nil
}

func NewDynamoDBConfig(ctx context.Context, s DynamoDBSettings) (aws.Config, error) {
	creds := credentials.NewStaticCredentialsProvider(
		valueOr(s.AccessKeyID, "local"),
		valueOr(s.SecretAccessKey, "local"),
		"",
	)

	return config.LoadDefaultConfig(ctx,
		config.WithRegion(valueOr(s.Region, "us-east-1")),
		config.WithCredentialsProvider(creds),
	)
}

func valueOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
