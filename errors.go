package ksn

import (
	"errors"
	"fmt"
)

// ErrInput marks a malformed or unusable input raster (missing file,
// CRS mismatch, all-nodata grid). Rejected before any stage runs.
var ErrInput = errors.New("input rejected")

// ThresholdError reports a configuration parameter outside its valid
// domain. All parameters are checked once, before stage one.
type ThresholdError struct {
	Param  string
	Reason string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("parameter %s: %s", e.Param, e.Reason)
}

// EmptyResult records a watershed that produced no qualifying stream
// cells. It is contained: the watershed is skipped and the batch
// continues.
type EmptyResult struct {
	WatershedID int
}

func (e EmptyResult) String() string {
	return fmt.Sprintf("watershed %d: no stream cells above threshold", e.WatershedID)
}
