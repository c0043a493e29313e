/*
Package registry manages type registration and key layouts for the table stores.

Key Layouts:
Bind a Go type to its DynamoDB PK and SK templates. Macros in braces are
replaced with the entity's attribute values when a row is written. A layout
whose templates reference no attribute, or carry unbalanced braces, is
rejected at registration:

	var ValueRecordLayout = registry.KeyLayout{
	    PK: "KEY#{PartitionKey}", // "KEY#k1"
	    SK: "ROW#{RowKey}",       // "ROW#6f1c..."
	}

	layout, err := registry.KeyLayoutFor[storagemodels.ValueRecord]()

Type Registry:
Maps EntityType attribute values to unmarshal functions, used when a raw
item cannot be decoded straight into the requested type:

	registry.RegisterType("ValueRecord", func(item map[string]types.AttributeValue) (interface{}, error) {
	    var rec storagemodels.ValueRecord
	    err := attributevalue.UnmarshalMap(item, &rec)
	    return rec, err
	})

ValueRecord is registered with both from this package's init. Both
registries are safe for concurrent use.
*/
package registry
