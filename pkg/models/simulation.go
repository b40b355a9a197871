package models

// CostSimulationResult compares the cost of running a policy-controlled fleet
// against a fixed-size baseline fleet over the same load series. Immutable
// once returned by the simulator.
type CostSimulationResult struct {
	IntervalsSimulated int            `json:"intervals_simulated"`
	ScalingEvents      []ScalingEvent `json:"scaling_events"`
	StaticCost         float64        `json:"static_cost"`
	AutoScalingCost    float64        `json:"auto_scaling_cost"`
	SavingsAmount      float64        `json:"savings_amount"`
	SavingsPercentage  float64        `json:"savings_percentage"`
	FinalServerCount   int            `json:"final_server_count"`
}
