package domain

// Canonical chat source names. These match the chat_source rows seeded
// at migration time; adapters report themselves under these names.
const (
	SourceReddit        = "Reddit"
	SourceTwitter       = "Twitter"
	SourceNewsAPI       = "NewsAPI"
	SourceCryptoCompare = "CryptoCompare"
	SourceCoinGecko     = "CoinGecko"
	SourceCryptoPanic   = "CryptoPanic"
)

// ChatSourceNames returns every known source name in seeding order.
func ChatSourceNames() []string {
	return []string{
		SourceReddit,
		SourceTwitter,
		SourceNewsAPI,
		SourceCryptoCompare,
		SourceCoinGecko,
		SourceCryptoPanic,
	}
}
