package models

// Token is one market catalog entry.
// @Description Market reference data for a single token
type Token struct {
	ID        string  `json:"id" example:"1" description:"Catalog id of the token"`
	Name      string  `json:"name" example:"Bitcoin" description:"Display name"`
	Symbol    string  `json:"symbol" example:"BTC" description:"Ticker symbol"`
	Price     float64 `json:"price" example:"67432.10" description:"Reference price in USD"`
	Change    float64 `json:"change" example:"2.45" description:"24h change percent"`
	MarketCap string  `json:"marketCap" example:"1.32T" description:"Display market cap"`
}

// Top30Tokens is the static market catalog: loaded at process start and
// never mutated at runtime.
var Top30Tokens = []Token{
	{ID: "1", Name: "Bitcoin", Symbol: "BTC", Price: 67432.10, Change: 2.45, MarketCap: "1.32T"},
	{ID: "2", Name: "Ethereum", Symbol: "ETH", Price: 3542.89, Change: -1.12, MarketCap: "425B"},
	{ID: "3", Name: "Tether", Symbol: "USDT", Price: 1.00, Change: 0.01, MarketCap: "110B"},
	{ID: "4", Name: "BNB", Symbol: "BNB", Price: 589.45, Change: 0.78, MarketCap: "88B"},
	{ID: "5", Name: "Solana", Symbol: "SOL", Price: 145.67, Change: 5.23, MarketCap: "65B"},
	{ID: "6", Name: "XRP", Symbol: "XRP", Price: 0.62, Change: -2.34, MarketCap: "34B"},
	{ID: "7", Name: "USDC", Symbol: "USDC", Price: 1.00, Change: 0.00, MarketCap: "32B"},
	{ID: "8", Name: "Cardano", Symbol: "ADA", Price: 0.45, Change: 1.15, MarketCap: "16B"},
	{ID: "9", Name: "Avalanche", Symbol: "AVAX", Price: 35.89, Change: -4.56, MarketCap: "13B"},
	{ID: "10", Name: "Dogecoin", Symbol: "DOGE", Price: 0.16, Change: 8.92, MarketCap: "23B"},
	{ID: "11", Name: "TRON", Symbol: "TRX", Price: 0.12, Change: 0.45, MarketCap: "10B"},
	{ID: "12", Name: "Polkadot", Symbol: "DOT", Price: 7.23, Change: -1.89, MarketCap: "9.8B"},
	{ID: "13", Name: "Chainlink", Symbol: "LINK", Price: 14.56, Change: 2.34, MarketCap: "8.5B"},
	{ID: "14", Name: "Polygon", Symbol: "MATIC", Price: 0.68, Change: -3.21, MarketCap: "6.7B"},
	{ID: "15", Name: "Shiba Inu", Symbol: "SHIB", Price: 0.000025, Change: 12.45, MarketCap: "14.8B"},
	{ID: "16", Name: "Litecoin", Symbol: "LTC", Price: 82.34, Change: 0.12, MarketCap: "6.1B"},
	{ID: "17", Name: "Bitcoin Cash", Symbol: "BCH", Price: 456.78, Change: -2.45, MarketCap: "9.0B"},
	{ID: "18", Name: "NEAR Protocol", Symbol: "NEAR", Price: 5.67, Change: 4.12, MarketCap: "6.0B"},
	{ID: "19", Name: "Uniswap", Symbol: "UNI", Price: 7.89, Change: -5.67, MarketCap: "4.7B"},
	{ID: "20", Name: "Dai", Symbol: "DAI", Price: 1.00, Change: 0.02, MarketCap: "4.9B"},
	{ID: "21", Name: "Stellar", Symbol: "XLM", Price: 0.11, Change: 1.56, MarketCap: "3.2B"},
	{ID: "22", Name: "Kaspa", Symbol: "KAS", Price: 0.15, Change: 3.21, MarketCap: "3.6B"},
	{ID: "23", Name: "Pepe", Symbol: "PEPE", Price: 0.000008, Change: 15.67, MarketCap: "3.4B"},
	{ID: "24", Name: "Monero", Symbol: "XMR", Price: 124.56, Change: -0.89, MarketCap: "2.3B"},
	{ID: "25", Name: "Cosmos", Symbol: "ATOM", Price: 8.45, Change: -1.23, MarketCap: "3.3B"},
	{ID: "26", Name: "Algorand", Symbol: "ALGO", Price: 0.18, Change: 2.1, MarketCap: "1.5B"},
	{ID: "27", Name: "Aave", Symbol: "AAVE", Price: 89.45, Change: -1.5, MarketCap: "1.3B"},
	{ID: "28", Name: "Arbitrum", Symbol: "ARB", Price: 0.98, Change: 4.2, MarketCap: "2.6B"},
	{ID: "29", Name: "Optimism", Symbol: "OP", Price: 2.34, Change: -2.8, MarketCap: "2.4B"},
	{ID: "30", Name: "Stacks", Symbol: "STX", Price: 2.12, Change: 5.6, MarketCap: "3.1B"},
}
