package risk

import (
	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"
)

// ActionType classifies the outcome of a risk assessment.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionForceExit
	ActionPartialExit
)

func (t ActionType) String() string {
	switch t {
	case ActionForceExit:
		return "FORCE_EXIT"
	case ActionPartialExit:
		return "PARTIAL_EXIT"
	default:
		return "NONE"
	}
}

// Action is the risk manager's verdict for one cycle. For ActionPartialExit,
// Tier identifies the take-profit tier and AmountPct is the percentage of
// the remaining position to sell.
type Action struct {
	Type      ActionType
	Tier      int
	AmountPct float64
}

// Manager computes stop-loss and tiered take-profit thresholds for one
// asset. Stop-loss always dominates take-profit and strategy signals; the
// acceptable-loss percentage only defines a floor for strategy-driven sells
// and never weakens the stop-loss.
type Manager struct {
	stopLossPct       float64
	acceptableLossPct float64
	tierPcts          []float64
	tierAmountPcts    []float64
}

// NewManager creates a risk manager from the asset configuration. The
// configuration must already be validated.
func NewManager(asset config.Asset) *Manager {
	return &Manager{
		stopLossPct:       asset.StopLossPct,
		acceptableLossPct: asset.AcceptableLossPct,
		tierPcts:          asset.TakeProfitPcts,
		tierAmountPcts:    asset.TakeProfitAmountPcts,
	}
}

// TierCount returns the number of configured take-profit tiers.
func (m *Manager) TierCount() int {
	return len(m.tierPcts)
}

// StopLossPrice returns the forced-exit threshold for the position.
func (m *Manager) StopLossPrice(p *entity.Position) float64 {
	return p.EntryPrice * (1 - m.stopLossPct/100)
}

// MinSellPrice returns the acceptable-loss floor: strategy sells below this
// price are suppressed. With zero acceptable loss it equals the entry price.
func (m *Manager) MinSellPrice(p *entity.Position) float64 {
	return p.EntryPrice * (1 - m.acceptableLossPct/100)
}

// TakeProfitPrice returns the threshold of the given tier.
func (m *Manager) TakeProfitPrice(p *entity.Position, tier int) float64 {
	return p.EntryPrice * (1 + m.tierPcts[tier]/100)
}

// NextTarget returns the first untriggered take-profit tier, or nil when
// every tier has fired.
func (m *Manager) NextTarget(p *entity.Position) *entity.TakeProfitTarget {
	if !p.IsLong() {
		return nil
	}
	for i := range m.tierPcts {
		if i < len(p.TriggeredTiers) && p.TriggeredTiers[i] {
			continue
		}
		return &entity.TakeProfitTarget{
			Price:     m.TakeProfitPrice(p, i),
			Pct:       m.tierPcts[i],
			AmountPct: m.tierAmountPcts[i],
		}
	}
	return nil
}

// Assess evaluates the position against the current price. The stop-loss
// check precedes take-profit tiers; tiers fire in ascending order and at
// most one tier fires per cycle, so a price jump past several thresholds
// never double-submits orders.
func (m *Manager) Assess(price float64, p *entity.Position) Action {
	if !p.IsLong() {
		return Action{Type: ActionNone}
	}

	if m.stopLossPct > 0 && price <= m.StopLossPrice(p) {
		return Action{Type: ActionForceExit}
	}

	for i := range m.tierPcts {
		if i < len(p.TriggeredTiers) && p.TriggeredTiers[i] {
			continue
		}
		if price >= m.TakeProfitPrice(p, i) {
			return Action{Type: ActionPartialExit, Tier: i, AmountPct: m.tierAmountPcts[i]}
		}
		// Lower tiers gate higher ones: an untriggered tier below threshold
		// means nothing above it may fire this cycle.
		break
	}

	return Action{Type: ActionNone}
}
