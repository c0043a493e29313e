/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/arraywriter/storagemodels"
)

// ValueRecordLayout stores one partition per request key. The prefixes keep
// PK and SK non-empty when the request key is empty.
var ValueRecordLayout = KeyLayout{
	PK: "KEY#{PartitionKey}",
	SK: "ROW#{RowKey}",
}

func init() {
	RegisterKeyLayout[storagemodels.ValueRecord](ValueRecordLayout)
	RegisterType(storagemodels.ValueRecordType, func(item map[string]types.AttributeValue) (interface{}, error) {
		var rec storagemodels.ValueRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	})
}
