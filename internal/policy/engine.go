package policy

import (
	"fmt"
	"math"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/models"
)

// Reason strings attached to decisions. Kept stable: they are persisted with
// scaling events and matched by dashboards.
const (
	ReasonInCooldown           = "in_cooldown"
	ReasonHighUtilization      = "high_utilization"
	ReasonCapacitySaturated    = "capacity_saturated"
	ReasonLowUtilization       = "low_utilization"
	ReasonScaleDownUnsafe      = "scale_down_unsafe"
	ReasonAtMinServers         = "at_min_servers"
	ReasonWithinTargetBand     = "within_target_band"
	ReasonZeroCapacityRecovery = "zero_capacity_recovery"
)

// Engine turns one load sample into one scaling decision under threshold,
// hysteresis, and cooldown constraints. It holds only the validated policy;
// all mutable state travels through Decide, so a single engine value can
// serve any number of fleets as long as each fleet's ScalingState is advanced
// by one writer at a time.
type Engine struct {
	policy models.PolicyConfig
}

func NewEngine(policy models.PolicyConfig) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("cannot build engine: %w", err)
	}
	return &Engine{policy: policy}, nil
}

func (e *Engine) Policy() models.PolicyConfig {
	return e.policy
}

// Decide evaluates one load sample against the current state and returns the
// decision plus the next state. It never fails: invalid policies are rejected
// at construction, and every input sample yields exactly one decision.
//
// Precedence: zero-capacity recovery, then cooldown, then the hysteresis band.
// Cooldown returning maintain regardless of load is the flapping guard.
func (e *Engine) Decide(state models.ScalingState, sample models.LoadSample, now time.Time) (models.ScalingDecision, models.ScalingState) {
	decision := models.ScalingDecision{
		Timestamp:      now,
		Action:         models.ActionMaintain,
		FromServers:    state.CurrentServers,
		ToServers:      state.CurrentServers,
		TriggeringLoad: sample.PredictedLoad,
	}

	capacity := float64(state.CurrentServers) * e.policy.CapacityPerServer

	// Should not occur while the bounds invariant holds, but a persisted
	// state from an older policy could arrive with zero servers.
	if capacity == 0 {
		decision.Utilization = math.Inf(1)
		return e.scaleUp(decision, state, sample, now, ReasonZeroCapacityRecovery)
	}

	decision.Utilization = sample.PredictedLoad / capacity

	if state.InCooldown(e.policy.CooldownPeriod, now) {
		decision.Reason = ReasonInCooldown
		decision.CooldownActive = true
		logger.Debugf("Decision: maintain (cooldown active, util=%.2f)", decision.Utilization)
		return decision, state
	}

	switch {
	case decision.Utilization > e.policy.ScaleUpThreshold:
		return e.scaleUp(decision, state, sample, now, ReasonHighUtilization)

	case decision.Utilization < e.policy.ScaleDownThreshold && state.CanScaleDown(e.policy.MinServers):
		return e.scaleDown(decision, state, sample, now)

	case decision.Utilization < e.policy.ScaleDownThreshold:
		decision.Reason = ReasonAtMinServers
		return decision, state

	default:
		decision.Reason = ReasonWithinTargetBand
		return decision, state
	}
}

// scaleUp targets the smallest server count whose projected utilization is at
// most the scale-up threshold, clamped into bounds. Hitting MaxServers with
// the overload unresolved is reported as saturation, not an error.
func (e *Engine) scaleUp(decision models.ScalingDecision, state models.ScalingState, sample models.LoadSample, now time.Time, reason string) (models.ScalingDecision, models.ScalingState) {
	required := int(math.Ceil(sample.PredictedLoad / (e.policy.CapacityPerServer * e.policy.ScaleUpThreshold)))
	target := e.policy.ClampServers(required)

	decision.Action = models.ActionScaleUp
	decision.ToServers = target
	decision.Reason = reason

	if required > e.policy.MaxServers {
		decision.Saturated = true
		decision.Reason = ReasonCapacitySaturated
	}

	logger.Infof("Decision: scale_up %d -> %d servers (util=%.2f, reason: %s)",
		decision.FromServers, decision.ToServers, decision.Utilization, decision.Reason)

	return decision, e.commit(state, decision, now)
}

// scaleDown removes exactly one server per decision so that fleet changes
// stay auditable and reversible. The step is refused when it would push
// utilization past the scale-up threshold.
func (e *Engine) scaleDown(decision models.ScalingDecision, state models.ScalingState, sample models.LoadSample, now time.Time) (models.ScalingDecision, models.ScalingState) {
	target := e.policy.ClampServers(state.CurrentServers - 1)

	projected := sample.PredictedLoad / (float64(target) * e.policy.CapacityPerServer)
	if projected > e.policy.ScaleUpThreshold {
		decision.Reason = ReasonScaleDownUnsafe
		logger.Debugf("Decision: maintain (scale_down would raise util to %.2f)", projected)
		return decision, state
	}

	decision.Action = models.ActionScaleDown
	decision.ToServers = target
	decision.Reason = ReasonLowUtilization

	logger.Infof("Decision: scale_down %d -> %d servers (util=%.2f)",
		decision.FromServers, decision.ToServers, decision.Utilization)

	return decision, e.commit(state, decision, now)
}

// commit folds a non-maintain decision into the next state, opening the
// cooldown window. ToServers is clamped once more so the bounds invariant
// holds no matter how the decision was produced.
func (e *Engine) commit(state models.ScalingState, decision models.ScalingDecision, now time.Time) models.ScalingState {
	action := decision.Action
	state.CurrentServers = e.policy.ClampServers(decision.ToServers)
	state.LastActionAt = &now
	state.LastAction = &action
	return state
}
