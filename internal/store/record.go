package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portwatch/reconciler/internal/domain"
)

// activityRow is the flat relational shape of the activity sum type. Which
// value columns are populated depends on the kind.
type activityRow struct {
	ID              string
	Account         string
	TransactionID   string
	Kind            domain.ActivityKind
	Date            time.Time
	SortingPriority int
	Description     string
	Identifiers     []byte
	HoldingID       *string
	Currency        string
	Quantity        *decimal.Decimal
	UnitPrice       *decimal.Decimal
	Amount          *decimal.Decimal
	TotalAmount     *decimal.Decimal
	Fees            []byte
	Taxes           []byte
}

func encodeActivity(act domain.Activity) (activityRow, error) {
	base := act.Base()

	identifiers, err := json.Marshal(base.Identifiers)
	if err != nil {
		return activityRow{}, fmt.Errorf("encoding identifiers: %w", err)
	}

	row := activityRow{
		ID:              base.ID,
		Account:         base.Account,
		TransactionID:   base.TransactionID,
		Kind:            act.Kind(),
		Date:            base.Date,
		SortingPriority: base.SortingPriority,
		Description:     base.Description,
		Identifiers:     identifiers,
		Fees:            []byte("[]"),
		Taxes:           []byte("[]"),
	}
	if base.HoldingID != "" {
		row.HoldingID = &base.HoldingID
	}

	switch x := act.(type) {
	case *domain.BuySellActivity:
		row.Quantity = &x.Quantity
		row.UnitPrice = &x.UnitPrice.Amount
		row.Currency = x.UnitPrice.Currency
		if x.TotalTransactionAmount != nil {
			row.TotalAmount = &x.TotalTransactionAmount.Amount
		}
		if row.Fees, err = json.Marshal(x.Fees); err != nil {
			return activityRow{}, fmt.Errorf("encoding fees: %w", err)
		}
		if row.Taxes, err = json.Marshal(x.Taxes); err != nil {
			return activityRow{}, fmt.Errorf("encoding taxes: %w", err)
		}
	case *domain.DividendActivity:
		row.Amount = &x.Amount.Amount
		row.Currency = x.Amount.Currency
		if row.Fees, err = json.Marshal(x.Fees); err != nil {
			return activityRow{}, fmt.Errorf("encoding fees: %w", err)
		}
		if row.Taxes, err = json.Marshal(x.Taxes); err != nil {
			return activityRow{}, fmt.Errorf("encoding taxes: %w", err)
		}
	case *domain.InterestActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	case *domain.FeeActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	case *domain.CashDepositActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	case *domain.CashWithdrawalActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	case *domain.ReceiveActivity:
		row.Quantity = &x.Quantity
		if row.Fees, err = json.Marshal(x.Fees); err != nil {
			return activityRow{}, fmt.Errorf("encoding fees: %w", err)
		}
	case *domain.StakingRewardActivity:
		row.Quantity = &x.Quantity
	case *domain.KnownBalanceActivity:
		row.Amount, row.Currency = &x.Balance.Amount, x.Balance.Currency
	case *domain.BondRepayActivity:
		row.Amount, row.Currency = &x.TotalRepayAmount.Amount, x.TotalRepayAmount.Currency
	case *domain.ValuableActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	case *domain.LiabilityActivity:
		row.Amount, row.Currency = &x.Amount.Amount, x.Amount.Currency
	default:
		return activityRow{}, fmt.Errorf("unknown activity type %T", act)
	}

	return row, nil
}

func decodeActivity(row activityRow) (domain.Activity, error) {
	base := domain.BaseActivity{
		ID:              row.ID,
		Account:         row.Account,
		TransactionID:   row.TransactionID,
		Date:            row.Date,
		SortingPriority: row.SortingPriority,
		Description:     row.Description,
	}
	if row.HoldingID != nil {
		base.HoldingID = *row.HoldingID
	}
	if len(row.Identifiers) > 0 {
		if err := json.Unmarshal(row.Identifiers, &base.Identifiers); err != nil {
			return nil, fmt.Errorf("decoding identifiers: %w", err)
		}
	}

	var fees, taxes []domain.Money
	if len(row.Fees) > 0 {
		if err := json.Unmarshal(row.Fees, &fees); err != nil {
			return nil, fmt.Errorf("decoding fees: %w", err)
		}
	}
	if len(row.Taxes) > 0 {
		if err := json.Unmarshal(row.Taxes, &taxes); err != nil {
			return nil, fmt.Errorf("decoding taxes: %w", err)
		}
	}

	money := func(d *decimal.Decimal) domain.Money {
		if d == nil {
			return domain.NewMoney(row.Currency, decimal.Zero)
		}
		return domain.NewMoney(row.Currency, *d)
	}
	quantity := decimal.Zero
	if row.Quantity != nil {
		quantity = *row.Quantity
	}

	switch row.Kind {
	case domain.KindBuy, domain.KindSell:
		trade := &domain.BuySellActivity{
			BaseActivity: base,
			Quantity:     quantity,
			UnitPrice:    money(row.UnitPrice),
			Fees:         fees,
			Taxes:        taxes,
		}
		if row.TotalAmount != nil {
			total := money(row.TotalAmount)
			trade.TotalTransactionAmount = &total
		}
		return trade, nil
	case domain.KindDividend:
		return &domain.DividendActivity{BaseActivity: base, Amount: money(row.Amount), Fees: fees, Taxes: taxes}, nil
	case domain.KindInterest:
		return &domain.InterestActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	case domain.KindFee:
		return &domain.FeeActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	case domain.KindCashDeposit:
		return &domain.CashDepositActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	case domain.KindCashWithdrawal:
		return &domain.CashWithdrawalActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	case domain.KindGift:
		return &domain.ReceiveActivity{BaseActivity: base, Quantity: quantity, Fees: fees}, nil
	case domain.KindStakingReward:
		return &domain.StakingRewardActivity{BaseActivity: base, Quantity: quantity}, nil
	case domain.KindKnownBalance:
		return &domain.KnownBalanceActivity{BaseActivity: base, Balance: money(row.Amount)}, nil
	case domain.KindBondRepay:
		return &domain.BondRepayActivity{BaseActivity: base, TotalRepayAmount: money(row.Amount)}, nil
	case domain.KindValuable:
		return &domain.ValuableActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	case domain.KindLiability:
		return &domain.LiabilityActivity{BaseActivity: base, Amount: money(row.Amount)}, nil
	default:
		return nil, fmt.Errorf("unknown activity kind %q", row.Kind)
	}
}
