package provider

// Item is one piece of sentiment-bearing text as returned by a
// provider, before identity and scoring are attached.
type Item struct {
	Content string
	URL     string
}
