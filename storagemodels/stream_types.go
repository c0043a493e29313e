/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// StreamResult is one row read from a partition, or the error that took its place.
type StreamResult[T any] struct {
	Item  T
	Error error
	Meta  StreamMeta
}

// StreamMeta locates a result within the read.
type StreamMeta struct {
	Index      int64 // 0-based position among the rows read so far
	PageNumber int   // 1-based Query page
}

// StreamOptions configures a partition read.
type StreamOptions struct {
	// PageSize is the number of rows requested per Query page.
	PageSize int32
	// ProgressHandler is called after every page and once more when the read ends.
	ProgressHandler func(StreamProgress)
	// ErrorHandler decides about rows that cannot be decoded: true skips the
	// row and keeps reading, false delivers the error and ends the read.
	// Without a handler the error is delivered and the read goes on.
	ErrorHandler func(error) bool
}

// StreamProgress reports how far a partition read has got.
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	// Skipped counts rows dropped by the ErrorHandler.
	Skipped   int
	StartTime time.Time
	// Done is set on the last report of a read that reached the partition end.
	Done bool
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{PageSize: 100}
}

// ApplyStreamOptions returns the defaults with opts applied in order. A
// non-positive page size falls back to the default.
func ApplyStreamOptions(opts ...StreamOption) StreamOptions {
	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.PageSize <= 0 {
		options.PageSize = DefaultStreamOptions().PageSize
	}
	return options
}

// WithPageSize sets the Query page size
func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler sets the handler for rows that cannot be decoded
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}
