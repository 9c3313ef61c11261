package video

import "sort"

// Summary is the aggregate of a video's annotations.
type Summary struct {
	TopLabels      []string `json:"top_labels"`
	TopCategories  []string `json:"top_categories"`
	MeanConfidence float64  `json:"mean_confidence"`
}

// Summarize returns the topN most frequent labels and categories, ties broken
// by first occurrence, and the mean of every non-nil confidence (0 if none).
// Empty texts are not counted.
func Summarize(annotations []Annotation, topN int) Summary {
	labels := newCounter()
	categories := newCounter()
	var sum float64
	var n int

	for _, a := range annotations {
		labels.add(a.Label)
		categories.add(a.Category)
		if a.Confidence != nil {
			sum += *a.Confidence
			n++
		}
	}

	s := Summary{
		TopLabels:     labels.top(topN),
		TopCategories: categories.top(topN),
	}
	if n > 0 {
		s.MeanConfidence = sum / float64(n)
	}
	return s
}

// counter counts texts and remembers first-seen order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(text string) {
	if text == "" {
		return
	}
	if _, ok := c.counts[text]; !ok {
		c.order = append(c.order, text)
	}
	c.counts[text]++
}

func (c *counter) top(n int) []string {
	ranked := append([]string(nil), c.order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []string{}
	}
	return ranked
}
