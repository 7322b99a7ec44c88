package index

import "math"

// BM25 parameters
const (
	bm25K1 = 1.2  // term frequency saturation
	bm25B  = 0.75 // length normalization strength
)

// idf is the smoothed inverse document frequency. It stays positive even when
// every document contains the term.
func idf(totalDocs, docFreq int) float64 {
	if totalDocs == 0 || docFreq == 0 {
		return 0
	}
	n, df := float64(totalDocs), float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// bm25 scores one term occurrence count within one field.
// BM25 = IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (|d| / avgdl)))
func bm25(termFreq float64, fieldLength int, avgFieldLength float64, totalDocs, docFreq int) float64 {
	if termFreq <= 0 {
		return 0
	}
	norm := 1.0
	if avgFieldLength > 0 {
		norm = 1 - bm25B + bm25B*(float64(fieldLength)/avgFieldLength)
	}
	return idf(totalDocs, docFreq) * (termFreq * (bm25K1 + 1)) / (termFreq + bm25K1*norm)
}
