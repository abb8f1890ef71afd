package http

import (
	"net/http"
	"strconv"
	"time"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// RequiredQuery returns the named query parameter or an InvalidInput error.
func RequiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", apperrors.InvalidInput("missing required query parameter: " + name)
	}
	return v, nil
}

func ExtractDate(r *http.Request, name string) (string, error) {
	v, err := RequiredQuery(r, name)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(model.DateLayout, v); err != nil {
		return "", apperrors.InvalidInput("invalid " + name + " parameter, expected YYYY-MM-DD: " + v)
	}
	return v, nil
}

func ExtractInt(r *http.Request, name string, min, max int) (int, error) {
	s, err := RequiredQuery(r, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min || v > max {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
