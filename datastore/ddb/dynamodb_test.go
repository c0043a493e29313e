/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

// fakeClient is an in-process stand-in for the DynamoDB API.
type fakeClient struct {
	mu        sync.Mutex
	puts      []*sdk.PutItemInput
	putErrs   []error
	pages     []*sdk.QueryOutput
	queryErr  error
	queries   int
	startKeys []map[string]types.AttributeValue
	queryPKs  []string
}

func (f *fakeClient) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts = append(f.puts, in)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.startKeys = append(f.startKeys, in.ExclusiveStartKey)
	if pk, ok := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS); ok {
		f.queryPKs = append(f.queryPKs, pk.Value)
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queries >= len(f.pages) {
		return &sdk.QueryOutput{}, nil
	}
	out := f.pages[f.queries]
	f.queries++
	return out, nil
}

func marshalRecord(t *testing.T, rec storagemodels.ValueRecord) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	av["PK"] = &types.AttributeValueMemberS{Value: "KEY#" + rec.PartitionKey}
	av["SK"] = &types.AttributeValueMemberS{Value: "ROW#" + rec.RowKey}
	return av
}

func stringAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()
	s, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		t.Fatalf("attribute %s is %T, want string", name, item[name])
	}
	return s.Value
}

func TestNewWithClientValidation(t *testing.T) {
	if _, err := NewWithClient[storagemodels.ValueRecord](nil, "SortArray"); !storeerrors.IsValidationError(err) {
		t.Errorf("nil client: expected validation error, got %v", err)
	}
	if _, err := NewWithClient[storagemodels.ValueRecord](&fakeClient{}, ""); !storeerrors.IsValidationError(err) {
		t.Errorf("empty table: expected validation error, got %v", err)
	}

	store, err := NewWithClient[storagemodels.ValueRecord](&fakeClient{}, "SortArray")
	if err != nil {
		t.Fatalf("NewWithClient failed: %v", err)
	}
	if store.TableName() != "SortArray" {
		t.Errorf("TableName = %q", store.TableName())
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("BuildsKeysFromLayout", func(t *testing.T) {
		client := &fakeClient{}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray")

		rec := storagemodels.NewValueRecord("k1", "r1", 95, at)
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		if len(client.puts) != 1 {
			t.Fatalf("expected 1 PutItem call, got %d", len(client.puts))
		}
		in := client.puts[0]
		if aws.ToString(in.TableName) != "SortArray" {
			t.Errorf("table = %q", aws.ToString(in.TableName))
		}
		if aws.ToString(in.ConditionExpression) != "attribute_not_exists(PK)" {
			t.Errorf("condition = %q", aws.ToString(in.ConditionExpression))
		}
		if got := stringAttr(t, in.Item, "PK"); got != "KEY#k1" {
			t.Errorf("PK = %q", got)
		}
		if got := stringAttr(t, in.Item, "SK"); got != "ROW#r1" {
			t.Errorf("SK = %q", got)
		}
		if got := stringAttr(t, in.Item, "EntityType"); got != storagemodels.ValueRecordType {
			t.Errorf("EntityType = %q", got)
		}
		n, ok := in.Item["Value"].(*types.AttributeValueMemberN)
		if !ok || n.Value != "95" {
			t.Errorf("Value = %#v", in.Item["Value"])
		}
	})

	t.Run("EmptyPartitionKey", func(t *testing.T) {
		client := &fakeClient{}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray")

		if err := store.Put(ctx, storagemodels.NewValueRecord("", "r2", 1, at)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if got := stringAttr(t, client.puts[0].Item, "PK"); got != "KEY#" {
			t.Errorf("PK = %q", got)
		}
	})

	t.Run("RetriesThrottling", func(t *testing.T) {
		client := &fakeClient{putErrs: []error{
			&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
			nil,
		}}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray",
			WithRetries(2), WithBackoff(time.Millisecond))

		if err := store.Put(ctx, storagemodels.NewValueRecord("k1", "r3", 3, at)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if len(client.puts) != 2 {
			t.Errorf("expected 2 PutItem calls, got %d", len(client.puts))
		}
	})

	t.Run("GivesUpAfterRetries", func(t *testing.T) {
		throttled := &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
		client := &fakeClient{putErrs: []error{throttled, throttled, throttled}}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray",
			WithRetries(1), WithBackoff(time.Millisecond))

		err := store.Put(ctx, storagemodels.NewValueRecord("k1", "r4", 4, at))
		if err == nil {
			t.Fatal("expected error")
		}
		if len(client.puts) != 2 {
			t.Errorf("expected 2 PutItem calls, got %d", len(client.puts))
		}
		var pte *types.ProvisionedThroughputExceededException
		if !errors.As(err, &pte) {
			t.Errorf("expected throughput error in chain, got %v", err)
		}
	})

	t.Run("ConditionFailureIsNotRetried", func(t *testing.T) {
		client := &fakeClient{putErrs: []error{
			&types.ConditionalCheckFailedException{Message: aws.String("exists")},
		}}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray",
			WithRetries(3), WithBackoff(time.Millisecond))

		if err := store.Put(ctx, storagemodels.NewValueRecord("k1", "r5", 5, at)); err == nil {
			t.Fatal("expected error")
		}
		if len(client.puts) != 1 {
			t.Errorf("expected 1 PutItem call, got %d", len(client.puts))
		}
	})

	t.Run("RetriedConditionFailureMeansWritten", func(t *testing.T) {
		client := &fakeClient{putErrs: []error{
			&types.InternalServerError{Message: aws.String("response lost")},
			&types.ConditionalCheckFailedException{Message: aws.String("exists")},
		}}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray",
			WithRetries(3), WithBackoff(time.Millisecond))

		if err := store.Put(ctx, storagemodels.NewValueRecord("k1", "r6", 6, at)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if len(client.puts) != 2 {
			t.Errorf("expected 2 PutItem calls, got %d", len(client.puts))
		}
	})

	t.Run("NoKeyLayout", func(t *testing.T) {
		type unregistered struct{ ID string }
		client := &fakeClient{}
		store, _ := NewWithClient[unregistered](client, "SortArray")

		err := store.Put(ctx, unregistered{ID: "x"})
		if !storeerrors.IsNotFound(err) {
			t.Errorf("expected not found error, got %v", err)
		}
		if len(client.puts) != 0 {
			t.Errorf("expected no PutItem call, got %d", len(client.puts))
		}
	})
}

func TestStream(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("PagesThroughPartition", func(t *testing.T) {
		lastKey := map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "KEY#k1"},
			"SK": &types.AttributeValueMemberS{Value: "ROW#b"},
		}
		client := &fakeClient{pages: []*sdk.QueryOutput{
			{
				Items: []map[string]types.AttributeValue{
					marshalRecord(t, storagemodels.NewValueRecord("k1", "a", 95, at)),
					marshalRecord(t, storagemodels.NewValueRecord("k1", "b", 45, at)),
				},
				LastEvaluatedKey: lastKey,
			},
			{
				Items: []map[string]types.AttributeValue{
					marshalRecord(t, storagemodels.NewValueRecord("k1", "c", 34, at)),
				},
			},
		}}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray")

		var pagesSeen int
		var done bool
		results := store.Stream(ctx, "k1",
			storagemodels.WithPageSize(2),
			storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
				pagesSeen = p.PagesProcessed
				done = p.Done
			}),
		)

		var values []int32
		for r := range results {
			if r.Error != nil {
				t.Fatalf("unexpected stream error: %v", r.Error)
			}
			if r.Item.PartitionKey != "k1" {
				t.Errorf("PartitionKey = %q", r.Item.PartitionKey)
			}
			values = append(values, r.Item.Value)
		}

		if len(values) != 3 || values[0] != 95 || values[1] != 45 || values[2] != 34 {
			t.Errorf("values = %v", values)
		}
		if pagesSeen != 2 || !done {
			t.Errorf("pages processed = %d, done = %v; want 2, true", pagesSeen, done)
		}
		if len(client.startKeys) != 2 || client.startKeys[0] != nil || client.startKeys[1] == nil {
			t.Errorf("unexpected pagination keys: %v", client.startKeys)
		}
		if client.queryPKs[0] != "KEY#k1" {
			t.Errorf("queried PK = %q", client.queryPKs[0])
		}
	})

	t.Run("QueryErrorEndsStream", func(t *testing.T) {
		client := &fakeClient{queryErr: errors.New("access denied")}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray", WithRetries(0))

		var errCount, itemCount int
		for r := range store.Stream(ctx, "k1") {
			if r.Error != nil {
				errCount++
			} else {
				itemCount++
			}
		}
		if errCount != 1 || itemCount != 0 {
			t.Errorf("got %d errors and %d items", errCount, itemCount)
		}
	})

	t.Run("QueryIsRetried", func(t *testing.T) {
		client := &flakyQueryClient{fakeClient: fakeClient{pages: []*sdk.QueryOutput{{
			Items: []map[string]types.AttributeValue{
				marshalRecord(t, storagemodels.NewValueRecord("k1", "a", 1, at)),
			},
		}}}, failures: 1}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray",
			WithRetries(2), WithBackoff(time.Millisecond))

		var values []int32
		for r := range store.Stream(ctx, "k1") {
			if r.Error != nil {
				t.Fatalf("unexpected stream error: %v", r.Error)
			}
			values = append(values, r.Item.Value)
		}
		if len(values) != 1 || client.calls != 2 {
			t.Errorf("values = %v after %d calls", values, client.calls)
		}
	})

	t.Run("EmptyPartitionKey", func(t *testing.T) {
		client := &fakeClient{}
		store, _ := NewWithClient[storagemodels.ValueRecord](client, "SortArray")

		for range store.Stream(ctx, "") {
		}
		if len(client.queryPKs) != 1 || client.queryPKs[0] != "KEY#" {
			t.Errorf("queried PKs = %v", client.queryPKs)
		}
	})

	t.Run("NoKeyLayout", func(t *testing.T) {
		type unregistered struct{ ID string }
		store, _ := NewWithClient[unregistered](&fakeClient{}, "SortArray")

		r, ok := <-store.Stream(ctx, "k1")
		if !ok || !storeerrors.IsNotFound(r.Error) {
			t.Errorf("expected not found result, got %+v", r)
		}
	})
}

func TestStreamErrorHandler(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	corrupt := marshalRecord(t, storagemodels.NewValueRecord("k1", "bad", 0, at))
	corrupt["Value"] = &types.AttributeValueMemberS{Value: "not a number"}

	newClient := func() *fakeClient {
		return &fakeClient{pages: []*sdk.QueryOutput{{
			Items: []map[string]types.AttributeValue{
				marshalRecord(t, storagemodels.NewValueRecord("k1", "a", 1, at)),
				corrupt,
				marshalRecord(t, storagemodels.NewValueRecord("k1", "c", 3, at)),
			},
		}}}
	}

	collect := func(results <-chan storagemodels.StreamResult[storagemodels.ValueRecord]) (values []int32, errs int) {
		for r := range results {
			if r.Error != nil {
				errs++
				continue
			}
			values = append(values, r.Item.Value)
		}
		return values, errs
	}

	t.Run("SkipContinues", func(t *testing.T) {
		store, _ := NewWithClient[storagemodels.ValueRecord](newClient(), "SortArray")

		var handled int
		var last storagemodels.StreamProgress
		values, errs := collect(store.Stream(ctx, "k1",
			storagemodels.WithErrorHandler(func(error) bool {
				handled++
				return true
			}),
			storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { last = p }),
		))

		if errs != 0 || len(values) != 2 || values[0] != 1 || values[1] != 3 {
			t.Errorf("values = %v, errors = %d", values, errs)
		}
		if handled != 1 || last.Skipped != 1 || !last.Done {
			t.Errorf("handled = %d, progress = %+v", handled, last)
		}
	})

	t.Run("StopEndsRead", func(t *testing.T) {
		store, _ := NewWithClient[storagemodels.ValueRecord](newClient(), "SortArray")

		var last storagemodels.StreamProgress
		values, errs := collect(store.Stream(ctx, "k1",
			storagemodels.WithErrorHandler(func(error) bool { return false }),
			storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { last = p }),
		))

		if errs != 1 || len(values) != 1 || values[0] != 1 {
			t.Errorf("values = %v, errors = %d", values, errs)
		}
		if last.Done {
			t.Error("a stopped read must not report Done")
		}
	})

	t.Run("NoHandlerDeliversAndContinues", func(t *testing.T) {
		store, _ := NewWithClient[storagemodels.ValueRecord](newClient(), "SortArray")

		values, errs := collect(store.Stream(ctx, "k1"))
		if errs != 1 || len(values) != 2 {
			t.Errorf("values = %v, errors = %d", values, errs)
		}
	})
}

// flakyQueryClient fails the first failures Query calls with a retryable error.
type flakyQueryClient struct {
	fakeClient
	failures int
	calls    int
}

func (f *flakyQueryClient) Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	}
	return f.fakeClient.Query(ctx, in, optFns...)
}

func TestAttributeText(t *testing.T) {
	av := map[string]types.AttributeValue{
		"PartitionKey": &types.AttributeValueMemberS{Value: "k1"},
		"Value":        &types.AttributeValueMemberN{Value: "7"},
		"Flag":         &types.AttributeValueMemberBOOL{Value: true},
		"Empty":        &types.AttributeValueMemberNULL{Value: true},
	}
	text := attributeText(av)

	for name, want := range map[string]string{
		"PartitionKey": "k1",
		"Value":        "7",
		"Flag":         "true",
		"Empty":        "",
		"Missing":      "",
	} {
		if got := text(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}
