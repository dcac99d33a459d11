package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseActivity carries the fields shared by every canonical activity variant.
type BaseActivity struct {
	ID              string                    `json:"id"`
	Account         string                    `json:"account"`
	Date            time.Time                 `json:"date"`
	TransactionID   string                    `json:"transactionId"`
	SortingPriority int                       `json:"sortingPriority"`
	Description     string                    `json:"description,omitempty"`
	Identifiers     []PartialSymbolIdentifier `json:"identifiers,omitempty"`

	// HoldingID is set by the holdings assembler once the instrument resolves;
	// it stays empty for activities whose symbol lookup failed this run.
	HoldingID string `json:"holdingId,omitempty"`
}

// Activity is the closed set of canonical transaction types. Each variant
// embeds BaseActivity; Kind identifies the variant for dispatch and storage.
type Activity interface {
	Base() *BaseActivity
	Kind() ActivityKind
}

// BuySellActivity is a trade. Quantity is signed: positive acquires, negative
// disposes. AdjustedQuantity/AdjustedUnitPrice hold values rewritten by the
// crypto correction passes and are excluded from change detection.
type BuySellActivity struct {
	BaseActivity
	Quantity               decimal.Decimal  `json:"quantity"`
	UnitPrice              Money            `json:"unitPrice"`
	Fees                   []Money          `json:"fees,omitempty"`
	Taxes                  []Money          `json:"taxes,omitempty"`
	TotalTransactionAmount *Money           `json:"totalTransactionAmount,omitempty"`
	AdjustedQuantity       *decimal.Decimal `json:"adjustedQuantity,omitempty"`
	AdjustedUnitPrice      *decimal.Decimal `json:"adjustedUnitPrice,omitempty"`
}

func (a *BuySellActivity) Base() *BaseActivity { return &a.BaseActivity }

func (a *BuySellActivity) Kind() ActivityKind {
	if a.EffectiveQuantity().IsNegative() {
		return KindSell
	}
	return KindBuy
}

// EffectiveQuantity returns the corrected quantity when a correction pass has
// rewritten it, else the source quantity.
func (a *BuySellActivity) EffectiveQuantity() decimal.Decimal {
	if a.AdjustedQuantity != nil {
		return *a.AdjustedQuantity
	}
	return a.Quantity
}

// EffectiveUnitPrice returns the corrected unit price when set, else the source
// unit price amount.
func (a *BuySellActivity) EffectiveUnitPrice() decimal.Decimal {
	if a.AdjustedUnitPrice != nil {
		return *a.AdjustedUnitPrice
	}
	return a.UnitPrice.Amount
}

// DividendActivity is a cash dividend attributed to an instrument.
type DividendActivity struct {
	BaseActivity
	Amount Money   `json:"amount"`
	Fees   []Money `json:"fees,omitempty"`
	Taxes  []Money `json:"taxes,omitempty"`
}

func (a *DividendActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *DividendActivity) Kind() ActivityKind  { return KindDividend }

// InterestActivity is interest received on a cash balance.
type InterestActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *InterestActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *InterestActivity) Kind() ActivityKind  { return KindInterest }

// FeeActivity is a standalone fee not attached to a trade.
type FeeActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *FeeActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *FeeActivity) Kind() ActivityKind  { return KindFee }

// CashDepositActivity is money moved into the account.
type CashDepositActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *CashDepositActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *CashDepositActivity) Kind() ActivityKind  { return KindCashDeposit }

// CashWithdrawalActivity is money moved out of the account.
type CashWithdrawalActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *CashWithdrawalActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *CashWithdrawalActivity) Kind() ActivityKind  { return KindCashWithdrawal }

// ReceiveActivity is an instrument quantity received without payment (gift).
type ReceiveActivity struct {
	BaseActivity
	Quantity decimal.Decimal `json:"quantity"`
	Fees     []Money         `json:"fees,omitempty"`
}

func (a *ReceiveActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *ReceiveActivity) Kind() ActivityKind  { return KindGift }

// StakingRewardActivity is an instrument quantity earned by staking.
type StakingRewardActivity struct {
	BaseActivity
	Quantity decimal.Decimal `json:"quantity"`
}

func (a *StakingRewardActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *StakingRewardActivity) Kind() ActivityKind  { return KindStakingReward }

// KnownBalanceActivity is a balance checkpoint. It never joins a holding.
type KnownBalanceActivity struct {
	BaseActivity
	Balance Money `json:"balance"`
}

func (a *KnownBalanceActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *KnownBalanceActivity) Kind() ActivityKind  { return KindKnownBalance }

// BondRepayActivity is a bond principal repayment.
type BondRepayActivity struct {
	BaseActivity
	TotalRepayAmount Money `json:"totalRepayAmount"`
}

func (a *BondRepayActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *BondRepayActivity) Kind() ActivityKind  { return KindBondRepay }

// ValuableActivity records acquisition of a non-traded valuable.
type ValuableActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *ValuableActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *ValuableActivity) Kind() ActivityKind  { return KindValuable }

// LiabilityActivity records a liability position.
type LiabilityActivity struct {
	BaseActivity
	Amount Money `json:"amount"`
}

func (a *LiabilityActivity) Base() *BaseActivity { return &a.BaseActivity }
func (a *LiabilityActivity) Kind() ActivityKind  { return KindLiability }
