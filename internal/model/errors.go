package model

import "errors"

var (
	// ErrAuthentication covers rejected credentials and an unreachable controller.
	ErrAuthentication = errors.New("authentication failed")
	// ErrFetch covers an erroring or malformed voucher listing.
	ErrFetch = errors.New("voucher fetch failed")
	// ErrNoVouchers is returned when the controller has no unused vouchers.
	ErrNoVouchers = errors.New("no unused vouchers found")
	ErrConfig     = errors.New("invalid configuration")
	ErrRender     = errors.New("render failed")
	ErrPrinter    = errors.New("printer delivery failed")
)
