package sequence

// Counts holds one number per category.
type Counts [numCategories]int

// Total returns the sum over all categories.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ByName returns the non-zero counts keyed by display name.
func (c Counts) ByName() map[string]int {
	m := make(map[string]int, numCategories)
	for _, cat := range Categories {
		if c[cat] > 0 {
			m[cat.String()] = c[cat]
		}
	}
	return m
}

// Tally counts the entries of each category in seq.
func Tally(seq []Entry) Counts {
	var counts Counts
	for _, e := range seq {
		if e.Category.Valid() {
			counts[e.Category]++
		}
	}
	return counts
}

// Expected computes, from configuration alone, how many entries of each
// category Build will produce.
func Expected(settings Settings, order Order) Counts {
	var counts Counts
	samplesOn := settings[Sample].Enabled
	samples := 0
	if samplesOn {
		samples = clamp(settings[Sample].Count)
	}

	for _, c := range order.Normalize() {
		cfg := settings[c]
		if !cfg.Enabled {
			continue
		}
		count := clamp(cfg.Count)
		counts[c] += startCount(c, cfg)
		if samplesOn && isMain(c, cfg) {
			counts[c] += count
		}
		if c == Sample {
			continue
		}
		if _, ok := cfg.Placement.(EndOnly); ok {
			counts[c] += count
		}
		if iv := interval(cfg.Placement); iv > 0 && samples > 0 {
			counts[c] += (samples - 1) / iv * count
		}
	}
	return counts
}
