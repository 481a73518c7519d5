package models

import "errors"

// Custom errors
var (
	ErrInvalidOdds         = errors.New("american odds must be a nonzero value")
	ErrInvalidProbability  = errors.New("probability must be strictly between 0 and 1")
	ErrNoQuoteForSide      = errors.New("no quote available for requested side")
	ErrGameDropped         = errors.New("game has no quotes on any side")
	ErrLegCountOutOfRange  = errors.New("parlay leg count out of range")
	ErrUnknownRiskTier     = errors.New("unknown risk tier")
	ErrMissingProbability  = errors.New("leg is missing a true probability")
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
)
