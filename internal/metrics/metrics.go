package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
)

// Metrics is a process-wide registry exposed in Prometheus text format.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	loadFetchesTotal   map[string]int64
	loadFetchErrors    map[string]int64
	scalingEventsTotal map[string]map[string]int64 // fleet -> action -> count
	decisionsTotal     map[string]map[string]int64 // fleet -> action -> count
	simulationsTotal   int64

	// Gauges
	fleetServerCount    map[string]int
	fleetUtilization    map[string]float64
	fleetLoad           map[string]float64
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open

	// Latencies (last observed value)
	fetchLatency    map[string]time.Duration
	decisionLatency map[string]time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			loadFetchesTotal:    make(map[string]int64),
			loadFetchErrors:     make(map[string]int64),
			scalingEventsTotal:  make(map[string]map[string]int64),
			decisionsTotal:      make(map[string]map[string]int64),
			fleetServerCount:    make(map[string]int),
			fleetUtilization:    make(map[string]float64),
			fleetLoad:           make(map[string]float64),
			circuitBreakerState: make(map[string]int),
			fetchLatency:        make(map[string]time.Duration),
			decisionLatency:     make(map[string]time.Duration),
		}
	})
	return instance
}

func (m *Metrics) IncLoadFetches(fleetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadFetchesTotal[fleetID]++
}

func (m *Metrics) IncLoadFetchErrors(fleetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadFetchErrors[fleetID]++
}

func (m *Metrics) IncScalingEvent(fleetID, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scalingEventsTotal[fleetID] == nil {
		m.scalingEventsTotal[fleetID] = make(map[string]int64)
	}
	m.scalingEventsTotal[fleetID][action]++
}

func (m *Metrics) IncDecision(fleetID, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decisionsTotal[fleetID] == nil {
		m.decisionsTotal[fleetID] = make(map[string]int64)
	}
	m.decisionsTotal[fleetID][action]++
}

func (m *Metrics) IncSimulations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulationsTotal++
}

func (m *Metrics) SetServerCount(fleetID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fleetServerCount[fleetID] = count
}

func (m *Metrics) SetUtilization(fleetID string, utilization float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fleetUtilization[fleetID] = utilization
}

func (m *Metrics) SetLoad(fleetID string, load float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fleetLoad[fleetID] = load
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetFetchLatency(fleetID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchLatency[fleetID] = d
}

func (m *Metrics) SetDecisionLatency(fleetID string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisionLatency[fleetID] = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for fleet, count := range m.loadFetchesTotal {
			writeMetric(w, "autoscaling_load_fetches_total", map[string]string{"fleet_id": fleet}, float64(count))
		}

		for fleet, count := range m.loadFetchErrors {
			writeMetric(w, "autoscaling_load_fetch_errors_total", map[string]string{"fleet_id": fleet}, float64(count))
		}

		for fleet, actions := range m.scalingEventsTotal {
			for action, count := range actions {
				writeMetric(w, "autoscaling_scaling_events_total", map[string]string{"fleet_id": fleet, "action": action}, float64(count))
			}
		}

		for fleet, actions := range m.decisionsTotal {
			for action, count := range actions {
				writeMetric(w, "autoscaling_decisions_total", map[string]string{"fleet_id": fleet, "action": action}, float64(count))
			}
		}

		writeMetric(w, "autoscaling_simulations_total", nil, float64(m.simulationsTotal))

		for fleet, count := range m.fleetServerCount {
			writeMetric(w, "autoscaling_fleet_servers", map[string]string{"fleet_id": fleet}, float64(count))
		}

		for fleet, utilization := range m.fleetUtilization {
			writeMetric(w, "autoscaling_fleet_utilization", map[string]string{"fleet_id": fleet}, utilization)
		}

		for fleet, load := range m.fleetLoad {
			writeMetric(w, "autoscaling_fleet_load_requests", map[string]string{"fleet_id": fleet}, load)
		}

		for name, state := range m.circuitBreakerState {
			writeMetric(w, "autoscaling_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		for fleet, latency := range m.fetchLatency {
			writeMetric(w, "autoscaling_load_fetch_latency_ms", map[string]string{"fleet_id": fleet}, float64(latency.Milliseconds()))
		}

		for fleet, latency := range m.decisionLatency {
			writeMetric(w, "autoscaling_decision_latency_ms", map[string]string{"fleet_id": fleet}, float64(latency.Milliseconds()))
		}
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()
}
