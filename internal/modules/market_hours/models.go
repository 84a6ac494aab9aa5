package market_hours

// MarketStatus represents the current status of a market
type MarketStatus struct {
	Open      bool   `json:"open"`
	Exchange  string `json:"exchange"`
	Currency  string `json:"currency"`
	Timezone  string `json:"timezone"`
	LocalTime string `json:"local_time"`
	LocalDate string `json:"local_date"`
	OpensAt   string `json:"opens_at"`
	ClosesAt  string `json:"closes_at"`
}
