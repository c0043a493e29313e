/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suparena/arraywriter/config"
	"github.com/suparena/arraywriter/datastore"
	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

// Dispatcher issues one store write per record.
//
// In async mode Dispatch returns as soon as the writes are started and a
// failed write never reaches the caller; it is logged, counted and handed to
// the failure hook. In sync mode Dispatch waits for every write and returns
// the joined failures. Writes run detached from the caller's context and are
// bounded by the write timeout in both modes.
type Dispatcher struct {
	store     datastore.DataStore[storagemodels.ValueRecord]
	mode      config.WriteMode
	timeout   time.Duration
	logger    *log.Logger
	onFailure func(error)

	inflight sync.WaitGroup
	written  atomic.Int64
	failed   atomic.Int64
}

// NewDispatcher creates a Dispatcher. onFailure may be nil.
func NewDispatcher(store datastore.DataStore[storagemodels.ValueRecord], mode config.WriteMode, timeout time.Duration, logger *log.Logger, onFailure func(error)) *Dispatcher {
	return &Dispatcher{
		store:     store,
		mode:      mode,
		timeout:   timeout,
		logger:    logger,
		onFailure: onFailure,
	}
}

// Dispatch writes records according to the dispatcher's mode.
func (d *Dispatcher) Dispatch(ctx context.Context, records []storagemodels.ValueRecord) error {
	ctx = context.WithoutCancel(ctx)

	if d.mode != config.WriteModeSync {
		for _, rec := range records {
			d.inflight.Add(1)
			go func(rec storagemodels.ValueRecord) {
				defer d.inflight.Done()
				_ = d.write(ctx, rec)
			}(rec)
		}
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, rec := range records {
		wg.Add(1)
		go func(rec storagemodels.ValueRecord) {
			defer wg.Done()
			if err := d.write(ctx, rec); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(rec)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (d *Dispatcher) write(ctx context.Context, rec storagemodels.ValueRecord) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.store.Put(ctx, rec); err != nil {
		err = storeerrors.NewStorageWriteError(rec.PartitionKey, rec.RowKey, err)
		d.failed.Add(1)
		d.logger.Printf("ERROR %v", err)
		if d.onFailure != nil {
			d.onFailure(err)
		}
		return err
	}
	d.written.Add(1)
	return nil
}

// Wait blocks until every async write started so far has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Written returns the number of rows written successfully.
func (d *Dispatcher) Written() int64 {
	return d.written.Load()
}

// Failed returns the number of rows whose write failed.
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}
