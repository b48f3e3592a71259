package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/forecasting"
	"github.com/emiliopalmerini/timesage/internal/productivity"
)

const apiVersion = "1.0.0"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "timesage API",
		"version": apiVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handlePredict retrains the forecasting model on the supplied weeks and
// predicts the next period. Short histories skip the models entirely; a
// failed retrain is logged and prediction proceeds on whatever weights exist.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var input domain.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	log.Printf("predict request: %d weeks, %d entries", len(input.Weeks), len(input.Timesheets))

	var goals map[int]float64
	if input.Settings.UserPreferences != nil {
		goals = input.Settings.UserPreferences.ProjectGoals
	}

	if len(input.Weeks) < 8 {
		forecast := forecasting.NaiveForecast(input.Weeks)
		forecasting.ApplyProjectGoals(forecast, goals)
		respondJSON(w, http.StatusOK, domain.AnalysisOutput{Forecasting: forecast})
		return
	}

	s.forecastMu.Lock()
	trainStart := time.Now()
	if err := s.forecast.Train(input.Weeks); err != nil {
		log.Printf("forecasting train failed: %v", err)
	}
	trainDuration := time.Since(trainStart)

	forecast, err := s.forecast.Predict(input.Weeks)
	s.forecastMu.Unlock()

	if err != nil {
		// No usable weights; answer with the flat average instead.
		log.Printf("forecasting predict failed, using naive fallback: %v", err)
		forecast = forecasting.NaiveForecast(input.Weeks)
	}

	s.learningMu.Lock()
	correction := s.learning.CorrectionFactor(domain.CategoryForecasting)
	confidenceAdj := s.learning.ConfidenceAdjustment(domain.CategoryForecasting)
	s.learningMu.Unlock()

	forecast.WeeklyHours *= correction
	forecast.MonthlyHours *= correction
	forecast.Confidence *= confidenceAdj

	forecasting.ApplyProjectGoals(forecast, goals)

	if err := s.metrics.ExportForecast(r.Context(), forecast, trainDuration); err != nil {
		log.Printf("metrics export failed: %v", err)
	}

	respondJSON(w, http.StatusOK, domain.AnalysisOutput{Forecasting: forecast})
}

// anomalyResponse always carries the anomalies key, even when empty.
type anomalyResponse struct {
	Anomalies []domain.Anomaly `json:"anomalies"`
}

// handleDetectAnomalies retrains the detector when enough entries arrive and
// scores the supplied entries.
func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	var input domain.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	log.Printf("detect-anomalies request: %d entries", len(input.Timesheets))

	if len(input.Timesheets) == 0 {
		respondJSON(w, http.StatusOK, anomalyResponse{Anomalies: []domain.Anomaly{}})
		return
	}

	s.detectorMu.Lock()
	if len(input.Timesheets) >= 20 {
		if err := s.detector.Train(input.Timesheets); err != nil {
			log.Printf("anomaly train failed: %v", err)
		}
	}
	anomalies, err := s.detector.Detect(input.Timesheets)
	s.detectorMu.Unlock()

	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "detection failed: "+err.Error())
		return
	}

	if merr := s.metrics.ExportAnomalies(r.Context(), len(input.Timesheets), len(anomalies)); merr != nil {
		log.Printf("metrics export failed: %v", merr)
	}

	respondJSON(w, http.StatusOK, anomalyResponse{Anomalies: anomalies})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var input domain.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	log.Printf("recommendations request: %d projects", len(input.Projects))

	recs := s.recommender.Generate(&input)
	respondJSON(w, http.StatusOK, domain.AnalysisOutput{Recommendations: recs})
}

func (s *Server) handleProductivity(w http.ResponseWriter, r *http.Request) {
	var input domain.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	log.Printf("productivity request: %d entries", len(input.Timesheets))

	if len(input.Timesheets) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "no timesheet entries provided")
		return
	}

	analyzer := productivity.NewAnalyzer(input.Settings.UserPreferences)
	report := analyzer.Analyze(input.Timesheets)
	respondJSON(w, http.StatusOK, domain.AnalysisOutput{Productivity: report})
}

type learnRequest struct {
	Category       string         `json:"category"`
	PredictedValue float64        `json:"predicted_value"`
	ActualValue    float64        `json:"actual_value"`
	Context        map[string]any `json:"context,omitempty"`
}

type learnResponse struct {
	Status               string  `json:"status"`
	CorrectionFactor     float64 `json:"correction_factor"`
	ConfidenceAdjustment float64 `json:"confidence_adjustment"`
}

// handleLearn records one (predicted, actual) pair and answers with the
// category's updated correction factors.
func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Category == "" {
		respondError(w, http.StatusBadRequest, "category is required")
		return
	}

	log.Printf("learn request: %s predicted=%.2f actual=%.2f",
		req.Category, req.PredictedValue, req.ActualValue)

	record := domain.PredictionError{
		ID:             uuid.NewString(),
		Category:       req.Category,
		PredictedValue: req.PredictedValue,
		ActualValue:    req.ActualValue,
		Error:          req.PredictedValue - req.ActualValue,
		Context:        req.Context,
		CreatedAt:      time.Now().UTC(),
	}

	s.learningMu.Lock()
	s.learning.Record(record)
	correction := s.learning.CorrectionFactor(req.Category)
	confidenceAdj := s.learning.ConfidenceAdjustment(req.Category)
	s.learningMu.Unlock()

	if s.feedbackRepo != nil {
		if err := s.feedbackRepo.Create(r.Context(), &record); err != nil {
			log.Printf("feedback persist failed: %v", err)
		}
	}

	if err := s.metrics.ExportFeedback(r.Context(), req.Category); err != nil {
		log.Printf("metrics export failed: %v", err)
	}

	respondJSON(w, http.StatusOK, learnResponse{
		Status:               "recorded",
		CorrectionFactor:     correction,
		ConfidenceAdjustment: confidenceAdj,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
