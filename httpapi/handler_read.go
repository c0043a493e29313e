/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"

	storeerrors "github.com/suparena/arraywriter/errors"
	"github.com/suparena/arraywriter/storagemodels"
)

// readResponse lists the values stored under a key.
type readResponse struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Values []int32 `json:"values"`
}

// readValues returns every value stored under the key, sorted ascending, or
// descending with ?order=desc. Rows that cannot be decoded are logged and
// left out. A key without rows is 404.
func (s *Server) readValues(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	order := r.URL.Query().Get("order")
	if order != "" && order != "asc" && order != "desc" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	results := s.store.Stream(ctx, key,
		storagemodels.WithPageSize(s.readPageSize),
		storagemodels.WithErrorHandler(func(err error) bool {
			s.logger.Printf("ERROR skipping row of key %q: %v", key, err)
			return true
		}),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			if p.Done {
				s.logger.Printf("Key = %q, read %d rows in %d pages, %d skipped", key, p.ItemsProcessed, p.PagesProcessed, p.Skipped)
			}
		}),
	)

	values := make([]int32, 0)
	for res := range results {
		if res.Error != nil {
			s.logger.Printf("ERROR reading key %q: %v", key, res.Error)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		values = append(values, res.Item.Value)
	}
	if len(values) == 0 {
		writeError(w, storeerrors.NewNotFoundError("partition", key))
		return
	}

	slices.Sort(values)
	if order == "desc" {
		slices.Reverse(values)
	}

	writeJSON(w, http.StatusOK, readResponse{Key: key, Count: len(values), Values: values})
}
