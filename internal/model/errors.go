package model

import "errors"

// Sentinel errors for model service operations
var (
	ErrConnectionFailed    = errors.New("failed to connect to model service")
	ErrServiceUnavailable  = errors.New("model service unavailable")
	ErrInvalidPrediction   = errors.New("invalid prediction from model service")
	ErrNoPredictionForGame = errors.New("model has no prediction for game")
	ErrJobNotFound         = errors.New("training job not found")
	ErrJobAlreadyTerminal  = errors.New("training job already finished")
	ErrInvalidTransition   = errors.New("invalid training status transition")
)
