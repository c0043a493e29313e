/*
Package arraywriter stores arrays of integers as individual table rows.

A client posts a key and an array of integers:

	POST /api/SortArrayWriter
	Content-Type: application/json

	{"key": "k1", "ArrayOfValues": [95, 45, 34, 3, 700]}

Each integer becomes its own row in a DynamoDB table, partitioned by the key
and identified by a freshly generated row key. The response reports how many
values were accepted:

	{"key": "k1", "count": 5}

Packages:
  - config: YAML, .env and environment configuration
  - httpapi: the HTTP handlers and the write dispatcher
  - datastore: the table interface, with ddb (DynamoDB) and mock implementations
  - storagemodels: row and query types
  - registry: key templates and EntityType decoding
  - errors: semantic error types

The arraywriter command in cmd/arraywriter wires these together.
*/
package arraywriter
