// Package syncer decides which persisted activities actually changed between
// runs, so the store only touches what differs.
package syncer

import (
	"log/slog"
	"sort"

	"github.com/portwatch/reconciler/internal/domain"
)

// Changeset partitions activities by transaction id into the three disjoint
// write sets of one run. Updates are applied as delete-then-insert of the new
// activity; unchanged transaction ids appear in no partition.
type Changeset struct {
	Inserts []domain.Activity
	Updates []domain.Activity
	Deletes []domain.Activity
}

// Empty reports whether the run produced no persisted changes.
func (c Changeset) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Diff compares the previously persisted activities against the newly resolved
// set, keyed by (account, transaction id). Synthesized transaction ids carry no
// account component, so two accounts may legitimately share one; the account
// half of the key keeps them apart.
func Diff(persisted, resolved []domain.Activity) Changeset {
	old := byActivityKey(persisted)
	current := byActivityKey(resolved)

	var cs Changeset
	for _, act := range resolved {
		before, ok := old[keyOf(act)]
		if !ok {
			cs.Inserts = append(cs.Inserts, act)
			continue
		}
		if !Equivalent(before, act) {
			cs.Updates = append(cs.Updates, act)
		}
	}
	for _, act := range persisted {
		if _, ok := current[keyOf(act)]; !ok {
			cs.Deletes = append(cs.Deletes, act)
		}
	}
	return cs
}

type activityKey struct {
	account       string
	transactionID string
}

func keyOf(act domain.Activity) activityKey {
	return activityKey{account: act.Base().Account, transactionID: act.Base().TransactionID}
}

func byActivityKey(activities []domain.Activity) map[activityKey]domain.Activity {
	index := make(map[activityKey]domain.Activity, len(activities))
	for _, act := range activities {
		key := keyOf(act)
		if _, dup := index[key]; dup {
			slog.Warn("duplicate transaction id in activity set",
				"account", key.account, "transactionId", key.transactionID)
		}
		index[key] = act
	}
	return index
}

// Equivalent compares two activities field by field, ignoring identity (the
// generated id), foreign-key references (holding id) and the adjusted values
// written by correction passes. Two activities of different kinds are never
// equivalent.
func Equivalent(a, b domain.Activity) bool {
	ab, bb := a.Base(), b.Base()
	if ab.Account != bb.Account || !ab.Date.Equal(bb.Date) ||
		ab.SortingPriority != bb.SortingPriority || ab.Description != bb.Description {
		return false
	}
	if !sameIdentifierTexts(ab.Identifiers, bb.Identifiers) {
		return false
	}

	switch x := a.(type) {
	case *domain.BuySellActivity:
		y, ok := b.(*domain.BuySellActivity)
		return ok && x.Quantity.Equal(y.Quantity) && x.UnitPrice.Equal(y.UnitPrice) &&
			domain.MoneysEqual(x.Fees, y.Fees) && domain.MoneysEqual(x.Taxes, y.Taxes) &&
			optionalMoneyEqual(x.TotalTransactionAmount, y.TotalTransactionAmount)
	case *domain.DividendActivity:
		y, ok := b.(*domain.DividendActivity)
		return ok && x.Amount.Equal(y.Amount) &&
			domain.MoneysEqual(x.Fees, y.Fees) && domain.MoneysEqual(x.Taxes, y.Taxes)
	case *domain.InterestActivity:
		y, ok := b.(*domain.InterestActivity)
		return ok && x.Amount.Equal(y.Amount)
	case *domain.FeeActivity:
		y, ok := b.(*domain.FeeActivity)
		return ok && x.Amount.Equal(y.Amount)
	case *domain.CashDepositActivity:
		y, ok := b.(*domain.CashDepositActivity)
		return ok && x.Amount.Equal(y.Amount)
	case *domain.CashWithdrawalActivity:
		y, ok := b.(*domain.CashWithdrawalActivity)
		return ok && x.Amount.Equal(y.Amount)
	case *domain.ReceiveActivity:
		y, ok := b.(*domain.ReceiveActivity)
		return ok && x.Quantity.Equal(y.Quantity) && domain.MoneysEqual(x.Fees, y.Fees)
	case *domain.StakingRewardActivity:
		y, ok := b.(*domain.StakingRewardActivity)
		return ok && x.Quantity.Equal(y.Quantity)
	case *domain.KnownBalanceActivity:
		y, ok := b.(*domain.KnownBalanceActivity)
		return ok && x.Balance.Equal(y.Balance)
	case *domain.BondRepayActivity:
		y, ok := b.(*domain.BondRepayActivity)
		return ok && x.TotalRepayAmount.Equal(y.TotalRepayAmount)
	case *domain.ValuableActivity:
		y, ok := b.(*domain.ValuableActivity)
		return ok && x.Amount.Equal(y.Amount)
	case *domain.LiabilityActivity:
		y, ok := b.(*domain.LiabilityActivity)
		return ok && x.Amount.Equal(y.Amount)
	default:
		return false
	}
}

// sameIdentifierTexts compares identifier sets by identifier text only,
// ignoring order. Identifiers come straight from the source lines, so a change
// here means the source changed and must be persisted.
func sameIdentifierTexts(a, b []domain.PartialSymbolIdentifier) bool {
	if len(a) != len(b) {
		return false
	}
	ta := identifierTexts(a)
	tb := identifierTexts(b)
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

func identifierTexts(identifiers []domain.PartialSymbolIdentifier) []string {
	texts := make([]string, len(identifiers))
	for i, id := range identifiers {
		texts[i] = id.Identifier
	}
	sort.Strings(texts)
	return texts
}

func optionalMoneyEqual(a, b *domain.Money) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
