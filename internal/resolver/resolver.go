// Package resolver turns raw partial activities into canonical typed
// activities, grouping broker lines by transaction id.
package resolver

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// Resolve groups the account's partial activities by transaction id and builds
// one canonical activity per group plus independent activities for non-fee,
// non-tax extra lines. Groups with an unsupported kind are logged and skipped;
// the rest of the batch still resolves.
func Resolve(account string, partials []domain.PartialActivity) []domain.Activity {
	groups := groupByTransaction(partials)

	var activities []domain.Activity
	for _, group := range groups {
		resolved, err := resolveGroup(account, group)
		if err != nil {
			slog.Warn("skipping transaction group",
				"account", account, "transactionId", group.id, "error", err)
			continue
		}
		activities = append(activities, resolved...)
	}
	return activities
}

type transactionGroup struct {
	id      string
	records []domain.PartialActivity
}

// groupByTransaction runs two passes: first every record gets a non-empty
// transaction id (synthesized deterministically when the source carries none),
// then records are grouped preserving first-appearance order.
func groupByTransaction(partials []domain.PartialActivity) []transactionGroup {
	withIDs := make([]domain.PartialActivity, len(partials))
	for i, p := range partials {
		if p.TransactionID == "" {
			p.TransactionID = p.SyntheticTransactionID()
		}
		withIDs[i] = p
	}

	index := make(map[string]int)
	var groups []transactionGroup
	for _, p := range withIDs {
		i, ok := index[p.TransactionID]
		if !ok {
			i = len(groups)
			index[p.TransactionID] = i
			groups = append(groups, transactionGroup{id: p.TransactionID})
		}
		groups[i].records = append(groups[i].records, p)
	}

	for i := range groups {
		sortRecords(groups[i].records)
	}
	return groups
}

// sortRecords orders a group's records by sorting priority, keeping input order
// among records without one.
func sortRecords(records []domain.PartialActivity) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortingPriority(records[i]) < sortingPriority(records[j])
	})
}

func sortingPriority(p domain.PartialActivity) int {
	if p.SortingPriority == nil {
		return 0
	}
	return *p.SortingPriority
}

func resolveGroup(account string, group transactionGroup) ([]domain.Activity, error) {
	sourceIdx := pickSourceIndex(group.records)
	source := group.records[sourceIdx]

	rest := lo.Filter(group.records, func(_ domain.PartialActivity, i int) bool {
		return i != sourceIdx
	})
	fees := lo.Filter(rest, func(p domain.PartialActivity, _ int) bool {
		return p.Kind == domain.KindFee
	})
	taxes := lo.Filter(rest, func(p domain.PartialActivity, _ int) bool {
		return p.Kind == domain.KindTax
	})
	others := lo.Filter(rest, func(p domain.PartialActivity, _ int) bool {
		return p.Kind != domain.KindFee && p.Kind != domain.KindTax
	})

	main, err := buildActivity(account, source, group.id, moneys(fees), moneys(taxes))
	if err != nil {
		return nil, err
	}
	activities := []domain.Activity{main}

	// Extra non-fee, non-tax lines become independent activities reusing the
	// source's instrument identifiers, with suffixed transaction ids.
	for i, other := range others {
		other.Identifiers = source.Identifiers
		extra, err := buildActivity(account, other, fmt.Sprintf("%s_%d", group.id, i+2), nil, nil)
		if err != nil {
			return nil, err
		}
		activities = append(activities, extra)
	}
	return activities, nil
}

// pickSourceIndex returns the index of the first record carrying instrument
// identifiers, else 0.
func pickSourceIndex(records []domain.PartialActivity) int {
	for i, p := range records {
		if p.HasIdentifiers() {
			return i
		}
	}
	return 0
}

func moneys(records []domain.PartialActivity) []domain.Money {
	return lo.Map(records, func(p domain.PartialActivity, _ int) domain.Money {
		return p.TotalValue()
	})
}

// buildActivity is the kind dispatch table: one constructor per supported
// activity kind.
func buildActivity(account string, p domain.PartialActivity, transactionID string, fees, taxes []domain.Money) (domain.Activity, error) {
	base := domain.BaseActivity{
		ID:              uuid.NewString(),
		Account:         account,
		Date:            p.Date,
		TransactionID:   transactionID,
		SortingPriority: sortingPriority(p),
		Description:     p.Description,
		Identifiers:     p.Identifiers,
	}

	switch p.Kind {
	case domain.KindBuy, domain.KindSell:
		quantity := p.Amount
		if p.Kind == domain.KindSell && quantity.IsPositive() {
			quantity = quantity.Neg()
		}
		trade := &domain.BuySellActivity{
			BaseActivity: base,
			Quantity:     quantity,
			UnitPrice:    domain.NewMoney(p.Currency, unitPrice(p)),
			Fees:         fees,
			Taxes:        taxes,
		}
		if p.UnitPrice != nil {
			total := domain.NewMoney(p.Currency, quantity.Abs().Mul(*p.UnitPrice))
			trade.TotalTransactionAmount = &total
		}
		return trade, nil
	case domain.KindDividend:
		return &domain.DividendActivity{BaseActivity: base, Amount: p.TotalValue(), Fees: fees, Taxes: taxes}, nil
	case domain.KindInterest:
		return &domain.InterestActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	case domain.KindFee, domain.KindTax:
		return &domain.FeeActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	case domain.KindCashDeposit:
		return &domain.CashDepositActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	case domain.KindCashWithdrawal:
		return &domain.CashWithdrawalActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	case domain.KindGift:
		return &domain.ReceiveActivity{BaseActivity: base, Quantity: p.Amount, Fees: fees}, nil
	case domain.KindStakingReward:
		return &domain.StakingRewardActivity{BaseActivity: base, Quantity: p.Amount}, nil
	case domain.KindKnownBalance:
		return &domain.KnownBalanceActivity{BaseActivity: base, Balance: domain.NewMoney(p.Currency, p.Amount)}, nil
	case domain.KindBondRepay:
		return &domain.BondRepayActivity{BaseActivity: base, TotalRepayAmount: p.TotalValue()}, nil
	case domain.KindValuable:
		return &domain.ValuableActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	case domain.KindLiability:
		return &domain.LiabilityActivity{BaseActivity: base, Amount: p.TotalValue()}, nil
	default:
		return nil, fmt.Errorf("unsupported activity kind %q", p.Kind)
	}
}

func unitPrice(p domain.PartialActivity) decimal.Decimal {
	if p.UnitPrice == nil {
		return decimal.Zero
	}
	return *p.UnitPrice
}
