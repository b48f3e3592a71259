package domain

import "time"

// PredictionError is one feedback record: a prediction paired with the value
// that actually materialized. Error keeps its sign (predicted - actual).
type PredictionError struct {
	ID             string         `json:"id"`
	Category       string         `json:"category"`
	PredictedValue float64        `json:"predicted_value"`
	ActualValue    float64        `json:"actual_value"`
	Error          float64        `json:"error"`
	Context        map[string]any `json:"context"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Prediction categories known to the learning module.
const (
	CategoryForecasting = "forecasting"
)
