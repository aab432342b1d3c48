package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// normalizeRequest names the category by label ("production", "area-PAR",
// "coordinate", ...).
type normalizeRequest struct {
	Category string `json:"category"`
	RawText  string `json:"raw_text"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	category, role, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := s.normalizer.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: req.RawText})
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

// handleRecord normalizes one flat mine record as the pipeline would, without
// geocoding.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	record, err := domain.ParseRawEvent(domain.RawEvent{Value: body})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record = domain.EnrichMineRecord(record, s.normalizer)

	s.logger.Debug("record normalized", "record_id", record.ID, "conversions", len(record.Conversions))
	sharedobs.WriteJSON(w, http.StatusOK, record)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
