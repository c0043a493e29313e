/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Key expansion from the layout registered for the entity type
  - Insert-only writes (PutItem conditional on attribute_not_exists(PK))
  - Retries with linear backoff for throttling and transient errors
  - Partition streaming across Query pages

Value rows use registry.ValueRecordLayout:

	PK: "KEY#{PartitionKey}" // "KEY#k1"
	SK: "ROW#{RowKey}"       // "ROW#6f1c..."

A retried PutItem that fails its condition is treated as written: row keys
are fresh, so the row it collides with is the one an earlier attempt stored.

Streaming:

	results := store.Stream(ctx, "k1",
	    storagemodels.WithPageSize(25),
	    storagemodels.WithErrorHandler(func(err error) bool {
	        log.Printf("skipping row: %v", err)
	        return true
	    }),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)
*/
package ddb
