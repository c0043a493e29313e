/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides mock implementations of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

// KeyFunc returns the partition and row key of an entity.
type KeyFunc[T any] func(entity T) (partitionKey, rowKey string)

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu         sync.RWMutex
	rows       []T
	keys       map[string]struct{}
	keyFunc    KeyFunc[T]
	putCalls   int
	putError   error
	putErrFunc func(T) error
	streamFunc func(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

// New creates a new mock DataStore that identifies rows with keyFunc.
func New[T any](keyFunc KeyFunc[T]) *DataStore[T] {
	return &DataStore[T]{
		keys:    make(map[string]struct{}),
		keyFunc: keyFunc,
	}
}

// NewValueStore creates a mock keyed the way value rows are keyed.
func NewValueStore() *DataStore[storagemodels.ValueRecord] {
	return New(func(r storagemodels.ValueRecord) (string, string) {
		return r.PartitionKey, r.RowKey
	})
}

// WithPutError makes every Put operation return err
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithPutErrorFunc decides per entity whether Put fails
func (m *DataStore[T]) WithPutErrorFunc(f func(T) error) *DataStore[T] {
	m.putErrFunc = f
	return m
}

// WithStreamFunc sets a custom stream function for testing
func (m *DataStore[T]) WithStreamFunc(f func(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]) *DataStore[T] {
	m.streamFunc = f
	return m
}

// Put stores an entity. Every call is counted, failed ones included, and a
// done context fails the call.
func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.putCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.putError != nil {
		return m.putError
	}
	if m.putErrFunc != nil {
		if err := m.putErrFunc(entity); err != nil {
			return err
		}
	}

	pk, rk := m.keyFunc(entity)
	composite := fmt.Sprintf("%s|%s", pk, rk)
	if _, exists := m.keys[composite]; exists {
		return errors.NewValidationError("rowKey", fmt.Sprintf("row %q already exists", composite))
	}

	m.keys[composite] = struct{}{}
	m.rows = append(m.rows, entity)
	return nil
}

// Stream returns the rows of partitionKey in insertion order and reports
// progress once, when the partition is exhausted.
func (m *DataStore[T]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, partitionKey, opts...)
	}

	options := storagemodels.ApplyStreamOptions(opts...)

	var partition []T
	m.mu.RLock()
	for _, r := range m.rows {
		if pk, _ := m.keyFunc(r); pk == partitionKey {
			partition = append(partition, r)
		}
	}
	m.mu.RUnlock()

	resultChan := make(chan storagemodels.StreamResult[T], options.PageSize)

	go func() {
		defer close(resultChan)

		progress := storagemodels.StreamProgress{StartTime: time.Now()}
		for i, v := range partition {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[T]{
				Item: v,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: i/int(options.PageSize) + 1,
				},
			}:
			}
			progress.ItemsProcessed++
		}

		if n := len(partition); n > 0 {
			progress.PagesProcessed = (n-1)/int(options.PageSize) + 1
		}
		progress.Done = true
		if options.ProgressHandler != nil {
			options.ProgressHandler(progress)
		}
	}()

	return resultChan
}

// Helper methods for testing

// Rows returns a copy of the stored rows in insertion order
func (m *DataStore[T]) Rows() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return out
}

// Count returns the number of stored rows
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// PutCalls returns how many times Put was called
func (m *DataStore[T]) PutCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.putCalls
}

// Clear removes all data and resets the call counter
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	m.keys = make(map[string]struct{})
	m.putCalls = 0
}
