package domain

// Strategy is a user-defined playbook that trades can be tagged with.
// Corresponds to strategies table.
type Strategy struct {
	ID          string
	UserID      string
	Name        string
	Description string
}

// StrategyTag is the association of a trade with a strategy.
type StrategyTag struct {
	ID   string
	Name string
}

// StrategyPerformance is the per-strategy breakdown of a trade collection.
type StrategyPerformance struct {
	StrategyID   string
	StrategyName string

	// Stats over the trades tagged with the strategy. Zero-valued when none.
	Stats TradingStats

	// Contribution is strategy P&L as a percentage of |portfolio P&L|.
	// Sign follows the strategy P&L; 0 when the portfolio total is 0.
	Contribution float64
}
