package holdings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// Corrector runs the post-processing passes over assembled holdings. Both
// passes are idempotent: a corrected holding passes through unchanged.
type Corrector struct {
	foldStakeRewards bool
	dustThreshold    decimal.Decimal
}

// NewCorrector creates a Corrector. Stake-reward folding only runs when
// enabled; dust correction always runs with the given value threshold.
func NewCorrector(foldStakeRewards bool, dustThreshold decimal.Decimal) *Corrector {
	return &Corrector{foldStakeRewards: foldStakeRewards, dustThreshold: dustThreshold}
}

// Apply runs stake-reward folding first, then dust correction.
func (c *Corrector) Apply(h *domain.Holding) {
	if c.foldStakeRewards {
		foldStakeRewards(h)
	}
	correctDust(h, c.dustThreshold)
}

// foldStakeRewards merges each staking reward of a crypto holding into the
// nearest preceding positive-quantity trade with an earlier-or-equal date. The
// trade's total value is preserved: the reward adds quantity, the unit price is
// rescaled to oldTotal / newQuantity. Rewards with no eligible preceding buy
// stay untouched.
func foldStakeRewards(h *domain.Holding) {
	if !h.IsCrypto() {
		return
	}
	h.SortActivities()

	kept := make([]domain.Activity, 0, len(h.Activities))
	for _, act := range h.Activities {
		reward, ok := act.(*domain.StakingRewardActivity)
		if !ok {
			kept = append(kept, act)
			continue
		}

		buy := nearestPrecedingBuy(kept, reward.Date)
		if buy == nil {
			kept = append(kept, act)
			continue
		}

		oldQuantity := buy.EffectiveQuantity()
		oldTotal := oldQuantity.Mul(buy.EffectiveUnitPrice())
		newQuantity := oldQuantity.Add(reward.Quantity)

		buy.AdjustedQuantity = &newQuantity
		if !newQuantity.IsZero() {
			newUnitPrice := oldTotal.Div(newQuantity)
			buy.AdjustedUnitPrice = &newUnitPrice
		}
		// The reward is folded in, not kept.
	}
	h.Activities = kept
}

func nearestPrecedingBuy(activities []domain.Activity, date time.Time) *domain.BuySellActivity {
	for i := len(activities) - 1; i >= 0; i-- {
		trade, ok := activities[i].(*domain.BuySellActivity)
		if !ok {
			continue
		}
		if trade.EffectiveQuantity().IsPositive() && !trade.Date.After(date) {
			return trade
		}
	}
	return nil
}

// correctDust nets out a residual fractional quantity left by rounding or fee
// effects. When the residual value is non-zero but below the threshold, it is
// folded into the most recent disposal, whose unit price is rescaled to keep
// its total value; activities dated after that disposal are downstream noise
// from the same rounding artifact and are discarded. Without a disposal the
// pass is a no-op.
func correctDust(h *domain.Holding, threshold decimal.Decimal) {
	if h.NetQuantity().IsZero() {
		return
	}

	h.SortActivities()
	idx := -1
	for i := len(h.Activities) - 1; i >= 0; i-- {
		if trade, ok := h.Activities[i].(*domain.BuySellActivity); ok && trade.EffectiveQuantity().IsNegative() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	disposal := h.Activities[idx].(*domain.BuySellActivity)
	cutoff := disposal.Date
	kept := h.Activities[:idx+1]
	for _, act := range h.Activities[idx+1:] {
		if !act.Base().Date.After(cutoff) {
			kept = append(kept, act)
		}
	}

	// The residual is taken over the kept set only: the discarded noise must
	// not leak into the fold, or the corrected net would drift off zero.
	residual := netQuantity(kept)
	if residual.IsZero() {
		return
	}
	value := residual.Mul(h.LastKnownUnitPrice()).Abs()
	if value.Cmp(threshold) >= 0 {
		return
	}

	oldQuantity := disposal.EffectiveQuantity()
	oldTotal := oldQuantity.Mul(disposal.EffectiveUnitPrice())
	newQuantity := oldQuantity.Sub(residual)

	disposal.AdjustedQuantity = &newQuantity
	if !newQuantity.IsZero() {
		newUnitPrice := oldTotal.Div(newQuantity)
		disposal.AdjustedUnitPrice = &newUnitPrice
	}
	h.Activities = kept
}

func netQuantity(activities []domain.Activity) decimal.Decimal {
	net := decimal.Zero
	for _, act := range activities {
		if trade, ok := act.(*domain.BuySellActivity); ok {
			net = net.Add(trade.EffectiveQuantity())
		}
	}
	return net
}
