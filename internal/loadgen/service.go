package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
)

type Config struct {
	Port int
}

// Service is the standalone traffic generator. The autoscaler's load source
// polls GET /load/{fleetID}; operators steer traffic via /pattern and /spike.
type Service struct {
	config     Config
	fleets     map[string]*FleetSim
	mu         sync.RWMutex
	httpServer *http.Server
}

func New(cfg Config) *Service {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}

	return &Service{
		config: cfg,
		fleets: make(map[string]*FleetSim),
	}
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Service) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", cors(s.healthHandler))
	mux.HandleFunc("/load/", cors(s.loadHandler))
	mux.HandleFunc("/fleets", cors(s.listFleetsHandler))
	mux.HandleFunc("/fleets/", cors(s.fleetHandler))
	mux.HandleFunc("/spike", cors(s.spikeHandler))
	mux.HandleFunc("/pattern", cors(s.patternHandler))

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Load generator listening on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Load generator server error: %v", err)
		}
	}()

	return nil
}

func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Service) GetOrCreateFleet(fleetID string) *FleetSim {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fleet, exists := s.fleets[fleetID]; exists {
		return fleet
	}

	fleet := NewFleetSim(fleetID, FleetSimConfig{
		BaseRequests: 1500.0,
		Variance:     150.0,
		Pattern:      PatternSteady,
	})
	s.fleets[fleetID] = fleet

	logger.Infof("Created simulated traffic for fleet: %s", fleetID)
	return fleet
}

func (s *Service) GetFleet(fleetID string) (*FleetSim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fleet, exists := s.fleets[fleetID]
	return fleet, exists
}

// HTTP Handlers

func (s *Service) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "load-generator",
	})
}

func (s *Service) loadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fleetID := r.URL.Path[len("/load/"):]
	if fleetID == "" {
		http.Error(w, "fleet ID required", http.StatusBadRequest)
		return
	}

	fleet := s.GetOrCreateFleet(fleetID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fleet_id":  fleetID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"requests":  fleet.CurrentLoad(),
	})
}

func (s *Service) listFleetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	fleets := make([]map[string]interface{}, 0, len(s.fleets))
	for _, fleet := range s.fleets {
		fleets = append(fleets, fleet.Status())
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fleets": fleets,
		"count":  len(fleets),
	})
}

func (s *Service) fleetHandler(w http.ResponseWriter, r *http.Request) {
	fleetID := r.URL.Path[len("/fleets/"):]
	if fleetID == "" {
		http.Error(w, "fleet ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getFleetHandler(w, r, fleetID)
	case http.MethodPost:
		s.createFleetHandler(w, r, fleetID)
	case http.MethodPut:
		s.updateFleetHandler(w, r, fleetID)
	case http.MethodDelete:
		s.deleteFleetHandler(w, r, fleetID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) getFleetHandler(w http.ResponseWriter, r *http.Request, fleetID string) {
	fleet, exists := s.GetFleet(fleetID)
	if !exists {
		http.Error(w, "fleet not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fleet.Status())
}

type CreateFleetRequest struct {
	BaseRequests float64 `json:"base_requests"`
	Variance     float64 `json:"variance"`
	Pattern      string  `json:"pattern"`
}

func (s *Service) createFleetHandler(w http.ResponseWriter, r *http.Request, fleetID string) {
	var req CreateFleetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.BaseRequests <= 0 {
		req.BaseRequests = 1500.0
	}
	if req.Variance < 0 {
		req.Variance = 150.0
	}

	s.mu.Lock()
	fleet := NewFleetSim(fleetID, FleetSimConfig{
		BaseRequests: req.BaseRequests,
		Variance:     req.Variance,
		Pattern:      ParsePattern(req.Pattern),
	})
	s.fleets[fleetID] = fleet
	s.mu.Unlock()

	logger.Infof("Created fleet %s with base load %.0f req/min", fleetID, req.BaseRequests)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fleet.Status())
}

type UpdateFleetRequest struct {
	BaseRequests *float64 `json:"base_requests"`
	Variance     *float64 `json:"variance"`
}

func (s *Service) updateFleetHandler(w http.ResponseWriter, r *http.Request, fleetID string) {
	fleet, exists := s.GetFleet(fleetID)
	if !exists {
		http.Error(w, "fleet not found", http.StatusNotFound)
		return
	}

	var req UpdateFleetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.BaseRequests != nil {
		fleet.SetBaseRequests(*req.BaseRequests)
	}
	if req.Variance != nil {
		fleet.SetVariance(*req.Variance)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fleet.Status())
}

func (s *Service) deleteFleetHandler(w http.ResponseWriter, r *http.Request, fleetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fleets[fleetID]; !exists {
		http.Error(w, "fleet not found", http.StatusNotFound)
		return
	}

	delete(s.fleets, fleetID)
	logger.Infof("Deleted fleet %s", fleetID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "fleet deleted"})
}

type SpikeRequest struct {
	FleetID  string  `json:"fleet_id"`
	Target   float64 `json:"target"`
	Duration string  `json:"duration"`
	RampUp   string  `json:"ramp_up"`
}

func (s *Service) spikeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SpikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fleet := s.GetOrCreateFleet(req.FleetID)

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		duration = 5 * time.Minute
	}

	rampUp, err := time.ParseDuration(req.RampUp)
	if err != nil {
		rampUp = 30 * time.Second
	}

	fleet.InjectSpike(req.Target, duration, rampUp)

	logger.Infof("Injected spike on fleet %s: target=%.0f req/min, duration=%s",
		req.FleetID, req.Target, duration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "spike injected",
		"fleet_id": req.FleetID,
		"target":   req.Target,
		"duration": duration.String(),
		"ramp_up":  rampUp.String(),
	})
}

type PatternRequest struct {
	FleetID string `json:"fleet_id"`
	Pattern string `json:"pattern"` // "steady", "daily", "weekly", "random", "gradual_rise", "sine_wave"
}

func (s *Service) patternHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fleet := s.GetOrCreateFleet(req.FleetID)
	fleet.SetPattern(ParsePattern(req.Pattern))

	logger.Infof("Set pattern %s on fleet %s", req.Pattern, req.FleetID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "pattern set",
		"fleet_id": req.FleetID,
		"pattern":  req.Pattern,
	})
}
