/*
Package errors provides semantic error types for arraywriter.

Common Errors:

	var (
	    ErrNotFound         = errors.New("not found")
	    ErrInvalidInput     = errors.New("invalid input")
	    ErrMalformedRequest = errors.New("malformed request")
	    ErrStorageWrite     = errors.New("storage write failed")
	)

Usage:

	values, err := parseWriteRequest(body)
	if err != nil {
	    if errors.IsMalformedRequest(err) {
	        // respond 400
	    }
	    return err
	}

	// Out-of-band write failures keep the row identity
	err := errors.NewStorageWriteError(rec.PartitionKey, rec.RowKey, cause)

	// Reading a partition without rows
	err := errors.NewNotFoundError("partition", key) // IsNotFound(err) == true

The error types implement Is (and Unwrap where they carry a cause), so they
work with the standard errors.Is and errors.As.
*/
package errors
