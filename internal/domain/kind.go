package domain

// ActivityKind classifies a raw broker transaction line.
type ActivityKind string

const (
	KindUndefined      ActivityKind = "undefined"
	KindBuy            ActivityKind = "buy"
	KindSell           ActivityKind = "sell"
	KindDividend       ActivityKind = "dividend"
	KindInterest       ActivityKind = "interest"
	KindFee            ActivityKind = "fee"
	KindTax            ActivityKind = "tax"
	KindCashDeposit    ActivityKind = "cash_deposit"
	KindCashWithdrawal ActivityKind = "cash_withdrawal"
	KindKnownBalance   ActivityKind = "known_balance"
	KindGift           ActivityKind = "gift"
	KindStakingReward  ActivityKind = "staking_reward"
	KindBondRepay      ActivityKind = "bond_repay"
	KindValuable       ActivityKind = "valuable"
	KindLiability      ActivityKind = "liability"
)

// ParseActivityKind maps a raw kind string to an ActivityKind, falling back to
// KindUndefined for anything it does not recognize.
func ParseActivityKind(raw string) ActivityKind {
	switch ActivityKind(raw) {
	case KindBuy, KindSell, KindDividend, KindInterest, KindFee, KindTax,
		KindCashDeposit, KindCashWithdrawal, KindKnownBalance, KindGift,
		KindStakingReward, KindBondRepay, KindValuable, KindLiability:
		return ActivityKind(raw)
	}
	return KindUndefined
}

// AssetClass is the top-level instrument classification used for match filtering.
type AssetClass string

const (
	AssetClassEquity      AssetClass = "equity"
	AssetClassFixedIncome AssetClass = "fixed_income"
	AssetClassLiquidity   AssetClass = "liquidity"
	AssetClassCommodity   AssetClass = "commodity"
	AssetClassRealEstate  AssetClass = "real_estate"
	AssetClassUndefined   AssetClass = "undefined"
)

// AssetSubClass refines an AssetClass.
type AssetSubClass string

const (
	SubClassStock          AssetSubClass = "stock"
	SubClassEtf            AssetSubClass = "etf"
	SubClassMutualFund     AssetSubClass = "mutual_fund"
	SubClassBond           AssetSubClass = "bond"
	SubClassCryptocurrency AssetSubClass = "cryptocurrency"
	SubClassPreciousMetal  AssetSubClass = "precious_metal"
	SubClassUndefined      AssetSubClass = "undefined"
)
