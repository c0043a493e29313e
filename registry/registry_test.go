/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

type sampleRow struct {
	ID string
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestKeyLayoutRegistry(t *testing.T) {
	t.Run("ValueRecordRegistered", func(t *testing.T) {
		l, err := KeyLayoutFor[storagemodels.ValueRecord]()
		if err != nil {
			t.Fatalf("KeyLayoutFor failed: %v", err)
		}
		if l != ValueRecordLayout {
			t.Errorf("layout = %+v, want %+v", l, ValueRecordLayout)
		}
	})

	t.Run("MissingLayoutIsNotFound", func(t *testing.T) {
		type unregistered struct{}
		if _, err := KeyLayoutFor[unregistered](); !storeerrors.IsNotFound(err) {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("RegisterAndDuplicate", func(t *testing.T) {
		layoutMu.Lock()
		delete(layouts, reflect.TypeOf(sampleRow{}))
		layoutMu.Unlock()

		RegisterKeyLayout[sampleRow](KeyLayout{PK: "S#{ID}", SK: "S#{ID}"})

		l, err := KeyLayoutFor[sampleRow]()
		if err != nil || l.PK != "S#{ID}" {
			t.Fatalf("unexpected layout: %+v, %v", l, err)
		}

		expectPanic(t, "duplicate", func() {
			RegisterKeyLayout[sampleRow](KeyLayout{PK: "X#{ID}", SK: "X#{ID}"})
		})
	})

	t.Run("InvalidLayoutsPanic", func(t *testing.T) {
		type invalidRow struct{}
		layouts := map[string]KeyLayout{
			"missing PK":     {SK: "ROW#{RowKey}"},
			"missing SK":     {PK: "KEY#{PartitionKey}"},
			"constant SK":    {PK: "KEY#{PartitionKey}", SK: "ROW"},
			"unbalanced PK":  {PK: "KEY#{PartitionKey", SK: "ROW#{RowKey}"},
			"stray brace SK": {PK: "KEY#{PartitionKey}", SK: "ROW#{RowKey}}"},
		}
		for name, l := range layouts {
			expectPanic(t, name, func() { RegisterKeyLayout[invalidRow](l) })
		}
		if _, err := KeyLayoutFor[invalidRow](); err == nil {
			t.Error("invalid layouts must not be registered")
		}
	})
}

func TestKeyLayoutValidate(t *testing.T) {
	if err := ValueRecordLayout.Validate(); err != nil {
		t.Errorf("ValueRecordLayout invalid: %v", err)
	}
	err := KeyLayout{PK: "KEY#{PartitionKey}", SK: "ROW"}.Validate()
	if !storeerrors.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestKeyLayoutExpand(t *testing.T) {
	attrs := map[string]string{"PartitionKey": "k1", "RowKey": "r1"}
	pk, sk := ValueRecordLayout.Expand(func(attr string) string { return attrs[attr] })
	if pk != "KEY#k1" || sk != "ROW#r1" {
		t.Errorf("Expand = %q, %q", pk, sk)
	}

	pk, sk = ValueRecordLayout.Expand(func(string) string { return "" })
	if pk != "KEY#" || sk != "ROW#" {
		t.Errorf("Expand with empty attributes = %q, %q", pk, sk)
	}
}

func TestAttributes(t *testing.T) {
	got := Attributes("V#{Value}#{Flag}")
	if !reflect.DeepEqual(got, []string{"Value", "Flag"}) {
		t.Errorf("Attributes = %v", got)
	}
	if got := Attributes("ROW"); len(got) != 0 {
		t.Errorf("Attributes = %v, want none", got)
	}
}

func TestTypeRegistry(t *testing.T) {
	fn := func(item map[string]types.AttributeValue) (interface{}, error) {
		return sampleRow{ID: "x"}, nil
	}
	typeMu.Lock()
	delete(typeRegistry, "SampleRow")
	typeMu.Unlock()

	RegisterType("SampleRow", fn)

	got, err := GetUnmarshalFunc("SampleRow")
	if err != nil {
		t.Fatalf("GetUnmarshalFunc failed: %v", err)
	}
	obj, _ := got(nil)
	if obj.(sampleRow).ID != "x" {
		t.Errorf("unexpected object %v", obj)
	}

	if _, err := GetUnmarshalFunc("Unknown"); err == nil {
		t.Error("expected error for unknown type")
	}

	if _, err := GetUnmarshalFunc(storagemodels.ValueRecordType); err != nil {
		t.Errorf("ValueRecord unmarshal func not registered: %v", err)
	}

	expectPanic(t, "duplicate type", func() { RegisterType("SampleRow", fn) })
}
