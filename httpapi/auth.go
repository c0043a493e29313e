/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"crypto/subtle"
	"net/http"
)

// FunctionKeyHeader carries the function key; the "code" query parameter is
// accepted as well.
const FunctionKeyHeader = "x-functions-key"

func (s *Server) requireFunctionKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(FunctionKeyHeader)
		if got == "" {
			got = r.URL.Query().Get("code")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.functionKey)) != 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
