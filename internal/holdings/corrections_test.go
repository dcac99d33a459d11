package holdings

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

func cryptoHolding(activities ...domain.Activity) *domain.Holding {
	h := &domain.Holding{
		ID: "h1",
		Profiles: []domain.SymbolProfile{{
			Symbol:        "BTC-USD",
			DataSource:    "YAHOO",
			AssetSubClass: domain.SubClassCryptocurrency,
		}},
	}
	h.Activities = activities
	return h
}

func reward(txID, quantity string, day int) *domain.StakingRewardActivity {
	return &domain.StakingRewardActivity{
		BaseActivity: domain.BaseActivity{
			TransactionID: txID,
			Date:          baseDate.AddDate(0, 0, day),
			Account:       "broker-a",
		},
		Quantity: d(quantity),
	}
}

func TestFoldStakeRewardIntoPrecedingBuy(t *testing.T) {
	buy := trade("t1", "BTC", "10", "100", 0)
	h := cryptoHolding(buy, reward("t2", "1", 1))

	NewCorrector(true, d("0.01")).Apply(h)

	if len(h.Activities) != 1 {
		t.Fatalf("activities = %d, want 1 (reward folded)", len(h.Activities))
	}
	if !buy.EffectiveQuantity().Equal(d("11")) {
		t.Errorf("quantity = %s, want 11", buy.EffectiveQuantity())
	}
	// 10 x 100 = 1000 total, rescaled over 11 units.
	want := d("1000").Div(d("11"))
	if !buy.EffectiveUnitPrice().Equal(want) {
		t.Errorf("unit price = %s, want %s", buy.EffectiveUnitPrice(), want)
	}
	total := buy.EffectiveQuantity().Mul(buy.EffectiveUnitPrice())
	if total.Sub(d("1000")).Abs().GreaterThan(d("0.0000001")) {
		t.Errorf("total value = %s, want 1000 preserved", total)
	}
}

func TestFoldStakeRewardDisabledByFlag(t *testing.T) {
	buy := trade("t1", "BTC", "10", "100", 0)
	h := cryptoHolding(buy, reward("t2", "1", 1))

	NewCorrector(false, d("0.01")).Apply(h)

	if len(h.Activities) != 2 {
		t.Errorf("activities = %d, want 2 (folding disabled)", len(h.Activities))
	}
	if !buy.EffectiveQuantity().Equal(d("10")) {
		t.Errorf("quantity = %s, want 10 unchanged", buy.EffectiveQuantity())
	}
}

func TestFoldStakeRewardWithoutEligibleBuyIsUntouched(t *testing.T) {
	h := cryptoHolding(reward("t1", "1", 0), trade("t2", "BTC", "10", "100", 1))

	NewCorrector(true, d("0.01")).Apply(h)

	if len(h.Activities) != 2 {
		t.Errorf("activities = %d, want 2 (no preceding buy, reward kept)", len(h.Activities))
	}
}

func TestFoldStakeRewardSkipsNonCrypto(t *testing.T) {
	buy := trade("t1", "AAPL", "10", "100", 0)
	h := cryptoHolding(buy, reward("t2", "1", 1))
	h.Profiles[0].AssetSubClass = domain.SubClassStock

	NewCorrector(true, decimal.Zero).Apply(h)

	if len(h.Activities) != 2 {
		t.Errorf("activities = %d, want 2 (non-crypto holding untouched)", len(h.Activities))
	}
}

func TestFoldStakeRewardIsIdempotent(t *testing.T) {
	buy := trade("t1", "BTC", "10", "100", 0)
	h := cryptoHolding(buy, reward("t2", "1", 1))

	c := NewCorrector(true, d("0.01"))
	c.Apply(h)
	qty, price := buy.EffectiveQuantity(), buy.EffectiveUnitPrice()

	c.Apply(h)
	if !buy.EffectiveQuantity().Equal(qty) || !buy.EffectiveUnitPrice().Equal(price) {
		t.Errorf("second apply changed the holding: %s @ %s -> %s @ %s",
			qty, price, buy.EffectiveQuantity(), buy.EffectiveUnitPrice())
	}
}

func TestDustCorrectionFoldsResidualIntoDisposal(t *testing.T) {
	buy := trade("t1", "BTC", "0.002", "0.01", 0)
	sell := trade("t2", "BTC", "-0.00199", "0.01", 1)
	h := cryptoHolding(buy, sell)

	NewCorrector(false, d("0.01")).Apply(h)

	if !sell.EffectiveQuantity().Equal(d("-0.002")) {
		t.Errorf("sell quantity = %s, want -0.002", sell.EffectiveQuantity())
	}
	if !h.NetQuantity().IsZero() {
		t.Errorf("net quantity = %s, want 0", h.NetQuantity())
	}
	// Disposal value preserved under the rescaled unit price.
	oldTotal := d("-0.00199").Mul(d("0.01"))
	newTotal := sell.EffectiveQuantity().Mul(sell.EffectiveUnitPrice())
	if !newTotal.Equal(oldTotal) {
		t.Errorf("disposal total = %s, want %s preserved", newTotal, oldTotal)
	}
}

func TestDustCorrectionAboveThresholdIsNoop(t *testing.T) {
	buy := trade("t1", "BTC", "2", "100", 0)
	sell := trade("t2", "BTC", "-1", "100", 1)
	h := cryptoHolding(buy, sell)

	NewCorrector(false, d("0.01")).Apply(h)

	if !sell.EffectiveQuantity().Equal(d("-1")) {
		t.Errorf("sell quantity = %s, want -1 unchanged", sell.EffectiveQuantity())
	}
}

func TestDustCorrectionWithoutDisposalIsNoop(t *testing.T) {
	buy := trade("t1", "BTC", "0.0001", "0.01", 0)
	h := cryptoHolding(buy)

	NewCorrector(false, d("0.01")).Apply(h)

	if !buy.EffectiveQuantity().Equal(d("0.0001")) {
		t.Errorf("buy quantity = %s, want unchanged", buy.EffectiveQuantity())
	}
}

func TestDustCorrectionDiscardsLaterActivities(t *testing.T) {
	buy := trade("t1", "BTC", "0.002", "0.01", 0)
	sell := trade("t2", "BTC", "-0.00199", "0.01", 1)
	noise := trade("t3", "BTC", "0.00001", "0.01", 2)
	h := cryptoHolding(buy, sell, noise)

	c := NewCorrector(false, d("0.01"))
	c.Apply(h)

	if len(h.Activities) != 2 {
		t.Fatalf("activities = %d, want 2 (noise after disposal discarded)", len(h.Activities))
	}
	for _, act := range h.Activities {
		if act.Base().TransactionID == "t3" {
			t.Error("noise activity t3 should be discarded")
		}
	}
	if !h.NetQuantity().IsZero() {
		t.Errorf("net quantity = %s, want 0 after correction", h.NetQuantity())
	}

	qty := sell.EffectiveQuantity()
	c.Apply(h)
	if !sell.EffectiveQuantity().Equal(qty) {
		t.Errorf("second apply changed quantity: %s -> %s", qty, sell.EffectiveQuantity())
	}
	if !h.NetQuantity().IsZero() {
		t.Errorf("net quantity = %s, want 0 after reapply", h.NetQuantity())
	}
}

func TestDustCorrectionIsIdempotent(t *testing.T) {
	buy := trade("t1", "BTC", "0.002", "0.01", 0)
	sell := trade("t2", "BTC", "-0.00199", "0.01", 1)
	h := cryptoHolding(buy, sell)

	c := NewCorrector(false, d("0.01"))
	c.Apply(h)
	qty := sell.EffectiveQuantity()

	c.Apply(h)
	if !sell.EffectiveQuantity().Equal(qty) {
		t.Errorf("second apply changed quantity: %s -> %s", qty, sell.EffectiveQuantity())
	}
	if !h.NetQuantity().IsZero() {
		t.Errorf("net quantity = %s, want 0 after reapply", h.NetQuantity())
	}
}
