/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// ValueRecordType is the EntityType stamped on every value row.
const ValueRecordType = "ValueRecord"

// ValueRecord is one row of the value table: a single integer stored under
// the request key. Rows are independent; siblings share only PartitionKey.
type ValueRecord struct {
	// PartitionKey is the request key the value was submitted under.
	PartitionKey string
	// RowKey is a fresh unique identifier within the partition.
	RowKey string
	// Value is the submitted integer.
	Value int32
	// Timestamp is the acceptance time, formatted as strfmt.DateTime.
	Timestamp string
	// EntityType is always ValueRecordType.
	EntityType string
}

// NewValueRecord builds a row for value accepted at the given time.
func NewValueRecord(partitionKey, rowKey string, value int32, at time.Time) ValueRecord {
	return ValueRecord{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Value:        value,
		Timestamp:    strfmt.DateTime(at.UTC()).String(),
		EntityType:   ValueRecordType,
	}
}

// AcceptedAt parses the row timestamp.
func (r ValueRecord) AcceptedAt() (time.Time, error) {
	dt, err := strfmt.ParseDateTime(r.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	return time.Time(dt), nil
}
