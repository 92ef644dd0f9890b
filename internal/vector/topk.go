package vector

import "sort"

// Result is a scored identifier.
type Result struct {
	ID    string
	Score float64
}

// TopK returns the k highest-scoring ids, best first. scores[i] belongs to ids[i].
// Equal scores keep their input order. Fewer than k candidates returns all of them.
func TopK(ids []string, scores []float64, k int) []Result {
	n := len(ids)
	if len(scores) < n {
		n = len(scores)
	}
	if k <= 0 || n == 0 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if k > n {
		k = n
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{ID: ids[order[i]], Score: scores[order[i]]}
	}
	return out
}
