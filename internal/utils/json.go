package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeStrict decodes JSON rejecting unknown keys and trailing content.
func DecodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected additional JSON content")
	}
	return nil
}

// DecodeRaw reads the body into a field map so handlers can tell an
// absent field apart from one set to null, and coerce types themselves.
func DecodeRaw(r io.Reader) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(r)
	fields := map[string]json.RawMessage{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected additional JSON content")
	}
	return fields, nil
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
