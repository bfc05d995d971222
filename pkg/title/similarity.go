package title

import (
	"github.com/hbollon/go-edlib"
)

// Similarity returns the Jaro-Winkler similarity of two titles after
// normalization, between 0 and 1.
func Similarity(a, b string) float64 {
	ca, cb := Clean(a), Clean(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(ca, cb))
}
