package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrGeolocationNotFound = errors.New("geolocation data not found")
	ErrLookupService       = errors.New("geolocation lookup failed")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidDomain       = errors.New("invalid domain")
)
