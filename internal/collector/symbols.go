package collector

// tickerToID maps common tickers to CoinGecko coin ids
var tickerToID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
	"ETC":   "ethereum-classic",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"NEAR":  "near",
	"FTM":   "fantom",
	"SAND":  "the-sandbox",
	"MANA":  "decentraland",
	"AAVE":  "aave",
	"CRV":   "curve-dao-token",
	"APE":   "apecoin",
	"LDO":   "lido-dao",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"PEPE":  "pepe",
	"SHIB":  "shiba-inu",
}

var idToTicker = func() map[string]string {
	m := make(map[string]string, len(tickerToID))
	for ticker, id := range tickerToID {
		m[id] = ticker
	}
	return m
}()

// ResolveID returns the CoinGecko id for tokenID. Known upper-case tickers
// ("BTC") are translated; anything else is assumed to already be an id.
func ResolveID(tokenID string) string {
	if id, ok := tickerToID[tokenID]; ok {
		return id
	}
	return tokenID
}

// TickerFor returns the ticker of a CoinGecko id or ticker.
func TickerFor(tokenID string) (string, bool) {
	t, ok := idToTicker[ResolveID(tokenID)]
	return t, ok
}
