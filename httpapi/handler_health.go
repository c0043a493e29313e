/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package httpapi

import (
	"net/http"

	"github.com/suparena/arraywriter"
)

// healthStats is the /health payload.
type healthStats struct {
	OK           bool   `json:"ok"`
	Version      string `json:"version"`
	WrittenRows  int64  `json:"written_rows"`
	FailedWrites int64  `json:"failed_writes"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStats{
		OK:           true,
		Version:      arraywriter.GetVersionInfo().Version,
		WrittenRows:  s.dispatcher.Written(),
		FailedWrites: s.dispatcher.Failed(),
	})
}
