package domain

// CashAction represents a USD-denominated ledger action.
type CashAction int

const (
	CashDeposit CashAction = iota
	CashWithdraw
)

// action string constants to avoid magic strings
const (
	cashActionDeposit  = "deposit"
	cashActionWithdraw = "withdraw"
	coinActionBuy      = "buy"
	coinActionSell     = "sell"
)

// ParseCashAction maps the wire representation to a CashAction.
func ParseCashAction(s string) (CashAction, bool) {
	switch s {
	case cashActionDeposit:
		return CashDeposit, true
	case cashActionWithdraw:
		return CashWithdraw, true
	}
	return 0, false
}

// String returns the string representation of the action
func (a CashAction) String() string {
	switch a {
	case CashDeposit:
		return cashActionDeposit
	case CashWithdraw:
		return cashActionWithdraw
	default:
		return "unknown"
	}
}

// CoinAction represents a bitcoin-denominated ledger action.
type CoinAction int

const (
	CoinBuy CoinAction = iota
	CoinSell
)

// ParseCoinAction maps the wire representation to a CoinAction.
func ParseCoinAction(s string) (CoinAction, bool) {
	switch s {
	case coinActionBuy:
		return CoinBuy, true
	case coinActionSell:
		return CoinSell, true
	}
	return 0, false
}

// String returns the string representation of the action
func (a CoinAction) String() string {
	switch a {
	case CoinBuy:
		return coinActionBuy
	case CoinSell:
		return coinActionSell
	default:
		return "unknown"
	}
}
