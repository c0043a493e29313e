/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"net/http"

	"github.com/suparena/arraywriter/storagemodels"
)

// writeValues stores every integer of the request as its own row under the
// request key and reports how many were accepted.
func (s *Server) writeValues(w http.ResponseWriter, r *http.Request) {
	key, values, err := parseWriteRequest(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.logger.Printf("ERROR %v", err)
		writeError(w, err)
		return
	}

	now := s.now()
	records := make([]storagemodels.ValueRecord, 0, len(values))
	for _, v := range values {
		records = append(records, storagemodels.NewValueRecord(key, s.rowKey(), v, now))
	}

	if err := s.dispatcher.Dispatch(r.Context(), records); err != nil {
		s.logger.Printf("ERROR key %q: %v", key, err)
		writeError(w, err)
		return
	}

	s.logger.Printf("Key = %q, values count = %d", key, len(records))

	if !s.disclose {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, writeResponse{Key: key, Count: len(records)})
}
