package ledger

// XP awards per settlement outcome. Contest round resolution awards no XP;
// only single-player settlement touches the wallet-level progression.
const (
	XPWin  = 100
	XPLoss = 10
	XPHold = 25
)

// XPPerLevel sets the linear level curve: level = xp/XPPerLevel + 1.
const XPPerLevel = 1000

// PnLScale is the number of decimal places P&L is rounded to.
// Rounding is half away from zero.
const PnLScale = 2
