/*
Package storagemodels defines the data structures shared by the stores.

ValueRecord:
One row per submitted integer:

	rec := NewValueRecord("k1", uuid.NewString(), 95, time.Now())
	// rec.PartitionKey == "k1", rec.EntityType == "ValueRecord"

StreamResult:
A row read from a partition, or the error that took its place:

	for res := range store.Stream(ctx, "k1", opts...) {
	    if res.Error != nil {
	        // ...
	    }
	    use(res.Item)
	}

StreamOptions:
Configuration for partition reads:

	opts := []StreamOption{
	    WithPageSize(25),
	    WithProgressHandler(func(p StreamProgress) { ... }),
	    WithErrorHandler(func(err error) bool { return true }), // skip undecodable rows
	}
*/
package storagemodels
