package httpapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/server/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, Response{OK: true, Message: "geosync"})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Queue(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "queue read failed", "error", err)
		writeFailure(w, statusFor(err), "queue unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// saveRequest is the JSON form of a save. Data may arrive as an object or
// as a JSON-encoded string, like the form field.
type saveRequest struct {
	Table      string          `json:"table"`
	Operation  string          `json:"operation"`
	UUID       string          `json:"uuid"`
	Data       json.RawMessage `json:"data"`
	DeviceCode string          `json:"device_code"`
}

func (s *Server) handleSave(t models.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readSaveRequest(r)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Table != "" && !strings.EqualFold(strings.TrimSpace(req.Table), string(t)) {
			writeFailure(w, http.StatusBadRequest, fmt.Sprintf("table %q does not match endpoint %q", req.Table, t))
			return
		}

		data, err := decodeData(req.Data)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		id, err := s.svc.Save(r.Context(), models.SaveInput{
			Table:      t,
			Operation:  models.Operation(req.Operation),
			UUID:       req.UUID,
			Data:       data,
			DeviceCode: req.DeviceCode,
		})
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				writeFailure(w, status, "save failed")
				return
			}
			writeFailure(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, Response{OK: true, Message: "success", QueueID: id})
	}
}

func readSaveRequest(r *http.Request) (*saveRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body", common.ErrValidation)
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: invalid form body", common.ErrValidation)
	}
	req := &saveRequest{
		Table:      r.PostForm.Get("table"),
		Operation:  r.PostForm.Get("operation"),
		UUID:       r.PostForm.Get("uuid"),
		DeviceCode: r.PostForm.Get("device_code"),
	}
	if d := r.PostForm.Get("data"); d != "" {
		req.Data = json.RawMessage(d)
	}
	return req, nil
}

// decodeData accepts an object, a string holding an object, or nothing.
func decodeData(raw json.RawMessage) (map[string]any, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: invalid data", common.ErrValidation)
		}
		return decodeData(json.RawMessage(inner))
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: data must be a JSON object", common.ErrValidation)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func (s *Server) handleTruncate(w http.ResponseWriter, r *http.Request) {
	key, err := s.svc.TruncateAll(r.Context(), r.Header.Get(common.ResetTokenHeaderName))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusUnauthorized {
			writeFailure(w, status, "invalid reset token")
			return
		}
		s.log.Error(r.Context(), "truncate failed", "error", err)
		writeFailure(w, status, "truncate failed")
		return
	}
	writeJSON(w, http.StatusOK, Response{OK: true, Message: "success", ArchiveKey: key})
}
