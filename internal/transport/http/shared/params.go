package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/payroll"
)

// PeriodParam reads a YYYY-MM path parameter.
func PeriodParam(r *http.Request, name string) (payroll.Period, error) {
	return payroll.ParsePeriod(chi.URLParam(r, name))
}

// YearParam reads a four digit year path parameter.
func YearParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, &payroll.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a year", raw)}
	}
	return year, nil
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &payroll.ValidationError{Field: "body", Reason: "too large"}
		}
		return &payroll.ValidationError{Field: "body", Reason: strings.TrimPrefix(err.Error(), "json: ")}
	}
	return nil
}
