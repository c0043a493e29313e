/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/arraywriter/registry"
	"github.com/suparena/arraywriter/storagemodels"
)

// Stream reads every row of partitionKey, page by page. Failed Query calls
// are retried like writes; a Query that still fails ends the read with an
// error result.
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.ApplyStreamOptions(opts...)

	input, err := d.partitionQuery(partitionKey, options.PageSize)
	if err != nil {
		errCh := make(chan storagemodels.StreamResult[T], 1)
		errCh <- storagemodels.StreamResult[T]{Error: err}
		close(errCh)
		return errCh
	}

	resultCh := make(chan storagemodels.StreamResult[T], options.PageSize)
	go d.streamWorker(ctx, input, options, resultCh)

	return resultCh
}

// partitionQuery builds the Query input selecting one partition.
func (d *DynamodbDataStore[T]) partitionQuery(partitionKey string, pageSize int32) (*dynamodb.QueryInput, error) {
	layout, err := registry.KeyLayoutFor[T]()
	if err != nil {
		return nil, err
	}
	pk, _ := layout.Expand(func(string) string { return partitionKey })

	return &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		Limit: aws.Int32(pageSize),
	}, nil
}

// streamWorker pages through the partition until LastEvaluatedKey runs out.
func (d *DynamodbDataStore[T]) streamWorker(
	ctx context.Context,
	input *dynamodb.QueryInput,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	progress := storagemodels.StreamProgress{StartTime: time.Now()}
	report := func() {
		if options.ProgressHandler != nil {
			options.ProgressHandler(progress)
		}
	}
	send := func(res storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- res:
			return true
		}
	}

	for {
		out, err := withRetry(ctx, d.retries, d.backoff, func() (*dynamodb.QueryOutput, error) {
			return d.client.Query(ctx, input)
		})
		if err != nil {
			send(storagemodels.StreamResult[T]{
				Error: fmt.Errorf("query failed: %w", err),
				Meta:  storagemodels.StreamMeta{Index: progress.ItemsProcessed, PageNumber: progress.PagesProcessed + 1},
			})
			report()
			return
		}

		progress.PagesProcessed++
		for _, item := range out.Items {
			result := d.processItem(item, progress.ItemsProcessed, progress.PagesProcessed)
			progress.ItemsProcessed++

			if result.Error != nil && options.ErrorHandler != nil {
				if options.ErrorHandler(result.Error) {
					progress.Skipped++
					continue
				}
				send(result)
				report()
				return
			}
			if !send(result) {
				return
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		report()
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	progress.Done = true
	report()
}

// processItem converts a DynamoDB item to a typed result
func (d *DynamodbDataStore[T]) processItem(item map[string]types.AttributeValue, index int64, pageNumber int) storagemodels.StreamResult[T] {
	meta := storagemodels.StreamMeta{Index: index, PageNumber: pageNumber}

	var result T
	err := attributevalue.UnmarshalMap(item, &result)
	if err == nil {
		return storagemodels.StreamResult[T]{Item: result, Meta: meta}
	}

	// If direct unmarshal fails and we have EntityType, try registry
	var entityType string
	if attr, ok := item["EntityType"]; ok {
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return storagemodels.StreamResult[T]{Error: fmt.Errorf("failed to unmarshal EntityType: %w", err), Meta: meta}
		}
	}
	if entityType != "" {
		if unmarshalFn, ferr := registry.GetUnmarshalFunc(entityType); ferr == nil {
			if obj, uerr := unmarshalFn(item); uerr == nil {
				if typedObj, ok := obj.(T); ok {
					return storagemodels.StreamResult[T]{Item: typedObj, Meta: meta}
				}
			}
		}
	}

	return storagemodels.StreamResult[T]{
		Error: fmt.Errorf("failed to unmarshal item to type %T: %w", result, err),
		Meta:  meta,
	}
}
