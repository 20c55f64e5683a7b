// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the NextPing JSON API. Handler groups wrap
// their dependencies and every response uses the {success, ...} envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nextping/internal/ai"
	"nextping/internal/cover"
	"nextping/internal/store"
)

// respondJSON writes status and an arbitrary payload as JSON.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondData writes a success envelope with a data field.
func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

// respondError writes a failure envelope with a message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// respondServiceError maps domain errors onto HTTP statuses. Generation
// errors carry their kind so API clients can distinguish caller mistakes
// (4xx) from upstream failures (5xx).
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	var coverErr *cover.Error
	if errors.As(err, &coverErr) {
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "image_generation_error",
			"message": coverErr.Error(),
		})
		return
	}

	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		status := http.StatusBadGateway
		switch aiErr.Kind {
		case ai.KindValidation, ai.KindConfiguration, ai.KindInvalidEndpoint:
			status = http.StatusBadRequest
		case ai.KindRateLimited:
			status = http.StatusServiceUnavailable
		case ai.KindTimeout:
			status = http.StatusGatewayTimeout
		}
		payload := map[string]any{
			"success": false,
			"error":   string(aiErr.Kind),
			"message": aiErr.Message,
		}
		if len(aiErr.Missing) > 0 {
			payload["missing"] = aiErr.Missing
		}
		// Callers debugging malformed completions need the model's actual
		// output, not just the parse failure.
		if aiErr.Raw != "" {
			payload["raw"] = aiErr.Raw
		}
		respondJSON(w, status, payload)
		return
	}

	slog.Error("internal error", "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON parses a request body into dst, limited to 1 MB.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}
