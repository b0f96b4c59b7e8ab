package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "huddle/pkg/errors"
)

// DecodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.InvalidInput(fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD path segment as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return day, nil
}

func ParseYearMonth(yearStr, monthStr string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid year parameter: %s", yearStr))
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid month parameter: %s", monthStr))
	}
	return year, time.Month(month), nil
}

func ParseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, apperrors.InvalidInput(fmt.Sprintf("invalid boolean parameter: %s", value))
	}
	return b, nil
}
