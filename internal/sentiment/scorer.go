package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Scorer computes a compound sentiment score in [-1, 1] from a fixed
// weighted lexicon. Scoring is deterministic and side-effect-free: the
// same text always yields the same score, with no network calls and no
// learned state.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

// lexicon holds per-token valences on a roughly -4..+4 scale before
// normalisation, crypto vocabulary included.
var lexicon = map[string]float64{
	"good": 1.9, "great": 3.1, "excellent": 3.2, "amazing": 2.8,
	"strong": 2.3, "positive": 2.3, "win": 2.8, "wins": 2.7,
	"winner": 2.8, "success": 2.7, "successful": 2.7, "profit": 2.4,
	"profits": 2.3, "gain": 2.4, "gains": 2.4, "growth": 2.4,
	"grow": 2.0, "up": 1.2, "higher": 1.5, "high": 1.3,
	"rise": 1.9, "rises": 1.8, "rising": 1.9, "soar": 3.0,
	"soars": 3.0, "soaring": 3.0, "surge": 2.7, "surges": 2.7,
	"surging": 2.7, "rally": 2.4, "rallies": 2.4, "breakout": 2.2,
	"bull": 2.1, "bullish": 2.6, "moon": 2.3, "pump": 1.4,
	"adoption": 1.9, "approve": 1.8, "approved": 1.9, "approval": 1.8,
	"support": 1.7, "upgrade": 1.8, "partnership": 1.7, "record": 1.5,
	"recover": 1.8, "recovery": 1.8, "rebound": 1.9, "optimistic": 2.2,
	"hope": 1.7, "love": 3.0, "best": 3.2, "happy": 2.6,
	"secure": 1.6, "safe": 1.5, "opportunity": 1.8, "milestone": 1.8,

	"bad": -2.5, "terrible": -3.1, "awful": -3.0, "horrible": -3.1,
	"weak": -1.8, "negative": -2.3, "lose": -2.4, "loses": -2.3,
	"loss": -2.4, "losses": -2.4, "loser": -2.6, "fail": -2.6,
	"fails": -2.5, "failed": -2.6, "failure": -2.7, "down": -1.2,
	"lower": -1.5, "low": -1.1, "fall": -1.9, "falls": -1.9,
	"falling": -1.9, "drop": -1.9, "drops": -1.9, "dropped": -1.9,
	"plunge": -2.9, "plunges": -2.9, "plummet": -3.0, "crash": -3.2,
	"crashes": -3.2, "dump": -2.2, "dumping": -2.2, "bear": -2.1,
	"bearish": -2.6, "sell-off": -2.3, "selloff": -2.3, "panic": -2.7,
	"fear": -2.2, "scam": -3.3, "fraud": -3.3, "hack": -3.0,
	"hacked": -3.1, "exploit": -2.7, "theft": -3.0, "stolen": -2.9,
	"ban": -2.4, "banned": -2.5, "lawsuit": -2.3, "sue": -2.2,
	"sued": -2.2, "fine": -1.4, "fined": -1.9, "warning": -1.7,
	"risk": -1.5, "risky": -1.8, "bubble": -1.9, "collapse": -3.1,
	"collapses": -3.1, "liquidation": -2.4, "liquidations": -2.4,
	"bankrupt": -3.2, "bankruptcy": -3.2, "default": -2.3,
	"worry": -1.8, "worried": -1.9, "concern": -1.6, "concerns": -1.6,
	"doubt": -1.7, "uncertain": -1.5, "uncertainty": -1.5,
	"volatile": -1.3, "trouble": -2.0, "worst": -3.1, "hate": -2.7,
}

// negators flip the valence of the following sentiment token.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nobody": {},
	"none": {}, "nothing": {}, "cannot": {}, "cant": {}, "dont": {},
	"doesnt": {}, "didnt": {}, "wont": {}, "isnt": {}, "arent": {},
	"wasnt": {}, "werent": {}, "without": {}, "hardly": {},
}

// boosters scale the valence of the following sentiment token.
var boosters = map[string]float64{
	"very": 0.29, "extremely": 0.35, "hugely": 0.3, "really": 0.27,
	"massively": 0.35, "totally": 0.25, "absolutely": 0.3,
	"significantly": 0.25, "sharply": 0.25, "strongly": 0.27,
	"slightly": -0.29, "somewhat": -0.23, "marginally": -0.27,
	"barely": -0.3, "mildly": -0.25,
}

const negationScope = 3

// Score returns the compound sentiment of text. Text with no lexicon
// hits, including the empty string, scores exactly 0.
func (s *Scorer) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}

		scale := 1.0
		negated := false
		for back := 1; back <= negationScope && i-back >= 0; back++ {
			prev := tokens[i-back]
			if _, ok := negators[prev]; ok {
				negated = !negated
				continue
			}
			if boost, ok := boosters[prev]; ok {
				// Boosters lose force with distance from the token.
				scale += boost / float64(back)
			}
		}
		if negated {
			valence = -valence * 0.74
		}
		sum += valence * scale
	}

	if sum == 0 {
		return 0
	}
	return normalize(sum)
}

// normalize maps an unbounded valence sum into (-1, 1).
func normalize(sum float64) float64 {
	score := sum / math.Sqrt(sum*sum+15)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' && b.Len() > 0:
			b.WriteRune(r)
		case r == '\'':
			// drops apostrophes so "don't" matches "dont"
		default:
			flush()
		}
	}
	flush()
	return tokens
}
