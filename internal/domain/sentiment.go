package domain

// Sentiment labels derived from the compound score's sign.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
)

// SentimentLabel maps a compound score to its label. Strictly positive
// scores are Positive, strictly negative are Negative, zero is Neutral.
func SentimentLabel(score float64) string {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
