/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/registry"
)

// API is the subset of the DynamoDB client used by DynamodbDataStore.
// *dynamodb.Client satisfies it.
type API interface {
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// ClientConfig holds what is needed to reach the table.
type ClientConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type DynamodbDataStore[T any] struct {
	client    API
	tableName string
	retries   int
	backoff   time.Duration
}

// Option configures a DynamodbDataStore.
type Option func(*storeOptions)

type storeOptions struct {
	retries int
	backoff time.Duration
}

// WithRetries sets how many times a retryable PutItem or Query failure is retried.
func WithRetries(retries int) Option {
	return func(o *storeOptions) {
		o.retries = retries
	}
}

// WithBackoff sets the base backoff between retries.
func WithBackoff(backoff time.Duration) Option {
	return func(o *storeOptions) {
		o.backoff = backoff
	}
}

// attributeText renders the marshaled attributes of an entity for use in
// key templates. Missing, NULL, binary and set values render empty.
func attributeText(av map[string]types.AttributeValue) func(string) string {
	return func(name string) string {
		switch tv := av[name].(type) {
		case *types.AttributeValueMemberS:
			return tv.Value
		case *types.AttributeValueMemberN:
			return tv.Value
		case *types.AttributeValueMemberBOOL:
			return strconv.FormatBool(tv.Value)
		default:
			return ""
		}
	}
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when an access key is given; otherwise the default AWS credential chain applies.
func NewDynamoDBClient(ctx context.Context, cc ClientConfig) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cc.Region),
	}
	if cc.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.AccessKey, cc.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if cc.Endpoint != "" {
			o.BaseEndpoint = aws.String(cc.Endpoint)
		}
	})

	log.Printf("DynamoDB client initialized in region: %s", cc.Region)
	return client, nil
}

// NewDynamodbDataStore constructs a new DynamodbDataStore for type T.
func NewDynamodbDataStore[T any](ctx context.Context, cc ClientConfig, tableName string, opts ...Option) (*DynamodbDataStore[T], error) {
	client, err := NewDynamoDBClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewWithClient[T](client, tableName, opts...)
}

// NewWithClient constructs a DynamodbDataStore over an existing client.
func NewWithClient[T any](client API, tableName string, opts ...Option) (*DynamodbDataStore[T], error) {
	if client == nil {
		return nil, storeerrors.NewValidationError("client", "must not be nil")
	}
	if tableName == "" {
		return nil, storeerrors.NewValidationError("tableName", "must not be empty")
	}

	o := storeOptions{retries: 2, backoff: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	return &DynamodbDataStore[T]{
		client:    client,
		tableName: tableName,
		retries:   o.retries,
		backoff:   o.backoff,
	}, nil
}

// TableName returns the table the store writes to.
func (d *DynamodbDataStore[T]) TableName() string {
	return d.tableName
}

// Put inserts entity as a new row, populating PK and SK from the key layout
// registered for T. The write is conditional on the key being unused, so an
// existing row is never overwritten.
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	layout, err := registry.KeyLayoutFor[T]()
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	pk, sk := layout.Expand(attributeText(av))
	if pk == "" || sk == "" {
		return storeerrors.NewValidationError("keyLayout", "expanded key layout missing valid PK or SK")
	}
	av["PK"] = &types.AttributeValueMemberS{Value: pk}
	av["SK"] = &types.AttributeValueMemberS{Value: sk}

	input := &sdk.PutItemInput{
		TableName:           &d.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	attempts := 0
	_, err = withRetry(ctx, d.retries, d.backoff, func() (*sdk.PutItemOutput, error) {
		attempts++
		return d.client.PutItem(ctx, input)
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			// A retried insert that finds its key taken was written by an
			// earlier attempt whose response got lost.
			if attempts > 1 {
				return nil
			}
			return fmt.Errorf("row %s/%s already exists: %w", pk, sk, err)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}
