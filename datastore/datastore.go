/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/arraywriter/storagemodels"
)

// DataStore is an append-only table keyed by partition and row.
type DataStore[T any] interface {
	// Put inserts entity as a new row.
	Put(ctx context.Context, entity T) error

	// Stream reads every row of partitionKey. The channel is closed once the
	// partition is exhausted, after a fatal error result, or when ctx is done.
	Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}
