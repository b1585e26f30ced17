package domain

import "errors"

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrInvalidPropertyData = errors.New("invalid property data")
	ErrInvalidQuery        = errors.New("invalid search parameters")
	ErrMissingID           = errors.New("property id is required")
)
