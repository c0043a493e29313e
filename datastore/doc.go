/*
Package datastore defines the core interface for the value table.

	type DataStore[T any] interface {
	    Put(ctx context.Context, entity T) error
	    Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	}

The write path only ever inserts. Reads stream a whole partition.

Implementations:
  - ddb: DynamoDB implementation with PK/SK key layout expansion
  - mock: In-memory mock implementation for testing
*/
package datastore
