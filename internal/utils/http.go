package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// GetPathParam extracts a path parameter from the URL using Go 1.22+ ServeMux pattern matching
func GetPathParam(r *http.Request, param string) string {
	return r.PathValue(param)
}

// GetPathParamInt extracts a path parameter and converts it to int
func GetPathParamInt(r *http.Request, param string) (int, error) {
	value := r.PathValue(param)
	return strconv.Atoi(value)
}

// GetQueryParam gets a query parameter with optional default value
func GetQueryParam(r *http.Request, param, defaultValue string) string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}
	return value
}

// ParseQueryInt reads an optional integer query parameter, rejecting malformed or out-of-range values.
func ParseQueryInt(r *http.Request, param string, defaultValue, min, max int) (int, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < min || intValue > max {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", param, min, max)
	}
	return intValue, nil
}

// GetQueryParamBool treats "true" and "1" as true.
func GetQueryParamBool(r *http.Request, param string) bool {
	value := r.URL.Query().Get(param)
	return value == "true" || value == "1"
}

// DecodeJSON reads a single JSON object from the request body.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, data interface{}, statusCode int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// RespondError sends an {"error": message} response
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, map[string]string{"error": message}, statusCode)
}
