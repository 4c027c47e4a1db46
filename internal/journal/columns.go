package journal

// Column names of the journal CSV format.
const (
	colID              = "id"
	colUserID          = "user_id"
	colPair            = "pair"
	colDirection       = "direction"
	colEntryPrice      = "entry_price"
	colExitPrice       = "exit_price"
	colStopLoss        = "stop_loss"
	colTakeProfit      = "take_profit"
	colQuantity        = "quantity"
	colRealizedPnl     = "realized_pnl"
	colPnl             = "pnl"
	colResult          = "result"
	colStatus          = "status"
	colTradeDate       = "trade_date"
	colEntryTime       = "entry_time"
	colExitTime        = "exit_time"
	colStrategies      = "strategies"
	colConfluenceScore = "confluence_score"
	colAIQualityScore  = "ai_quality_score"
	colNotes           = "notes"
)

// Columns is the export column order. Import accepts any order and subset
// containing the required columns.
var Columns = []string{
	colID, colUserID, colPair, colDirection,
	colEntryPrice, colExitPrice, colStopLoss, colTakeProfit, colQuantity,
	colRealizedPnl, colPnl, colResult, colStatus,
	colTradeDate, colEntryTime, colExitTime,
	colStrategies, colConfluenceScore, colAIQualityScore, colNotes,
}

// requiredColumns must be present in every imported header.
var requiredColumns = []string{colPair, colDirection, colTradeDate}

// Strategy cell syntax: "id:name;id2:name2". A bare id uses the id as name.
const (
	strategySep     = ";"
	strategyNameSep = ":"
)
