package portfolio

// TransactionType is the side of a transaction
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Holding is the current share count of one ticker
type Holding struct {
	Ticker string  `json:"ticker" validate:"required"`
	Shares float64 `json:"shares" validate:"gte=0"`
}

// Transaction is one executed buy or sell
type Transaction struct {
	Ticker string          `json:"ticker" validate:"required"`
	Type   TransactionType `json:"type" validate:"required,oneof=buy sell"`
	Price  float64         `json:"price" validate:"gt=0"`
	Shares float64         `json:"shares" validate:"gt=0"`
}

// PositionMetrics describes one position valued at its latest USD price
type PositionMetrics struct {
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	Price         float64 `json:"price"`
	ShareValue    float64 `json:"share_value"`
	WeightedPrice float64 `json:"weighted_price"`
	Return        float64 `json:"stock_return"`
	Contribution  float64 `json:"portfolio_contribution"`
	Cached        bool    `json:"cached"`
	// Error is set when no usable price was available; Price is then 0
	Error string `json:"error,omitempty"`
}

// Metrics is the valued portfolio
type Metrics struct {
	Positions   []PositionMetrics `json:"portfolio"`
	EquityValue float64           `json:"equity_value"`
}
