// Package sequence builds the ordered injection sequence of a worklist from
// per-category placement rules.
package sequence

// Entry is one injection slot. Index is local to its block: it restarts at 1
// every time a new block of the same category begins.
type Entry struct {
	Category Category `json:"type"`
	Index    int      `json:"index"`
}

// Build returns the injection sequence for settings, evaluated in order.
// It never fails; categories with unusable configuration contribute nothing.
//
// Phases:
//  1. start blocks (StartOnly, StartPlusFixedInterval, first FixedInterval block)
//  2. main sequence with interval repeats after every interval-th sample
//  3. end blocks (EndOnly)
func Build(settings Settings, order Order) []Entry {
	order = order.Normalize()
	var seq []Entry

	for _, c := range order {
		if n := startCount(c, settings[c]); n > 0 {
			seq = appendBlock(seq, c, n)
		}
	}

	seq = buildMain(seq, settings, order)

	for _, c := range order {
		cfg := settings[c]
		if c == Sample || !cfg.Enabled {
			continue
		}
		if _, ok := cfg.Placement.(EndOnly); ok {
			seq = appendBlock(seq, c, clamp(cfg.Count))
		}
	}
	return seq
}

// startCount is the size of c's block in the start phase.
func startCount(c Category, cfg CategoryConfig) int {
	if c == Sample || !cfg.Enabled {
		return 0
	}
	count := clamp(cfg.Count)
	switch p := cfg.Placement.(type) {
	case StartOnly, FixedInterval:
		return count
	case StartPlusFixedInterval:
		n := clamp(p.StartCount)
		if n == 0 || n > count {
			n = count
		}
		return n
	}
	return 0
}

// isMain reports whether c iterates its count in the main phase. Sample is
// always main; other categories only when they carry no placement rule.
func isMain(c Category, cfg CategoryConfig) bool {
	if !cfg.Enabled {
		return false
	}
	return c == Sample || cfg.Placement == nil
}

func buildMain(seq []Entry, settings Settings, order Order) []Entry {
	if !settings[Sample].Enabled {
		return seq
	}

	type repeater struct {
		category Category
		interval int
		count    int
	}
	var repeaters []repeater
	for _, c := range order {
		cfg := settings[c]
		if c == Sample || !cfg.Enabled {
			continue
		}
		if iv := interval(cfg.Placement); iv > 0 {
			repeaters = append(repeaters, repeater{category: c, interval: iv, count: clamp(cfg.Count)})
		}
	}

	samples := 0
	for _, c := range order {
		cfg := settings[c]
		if !isMain(c, cfg) {
			continue
		}
		count := clamp(cfg.Count)
		for i := 1; i <= count; i++ {
			seq = append(seq, Entry{Category: c, Index: i})
			if c != Sample {
				continue
			}
			samples++
			if i == count {
				// No bracket after the final sample.
				continue
			}
			for _, r := range repeaters {
				if samples%r.interval == 0 {
					seq = appendBlock(seq, r.category, r.count)
				}
			}
		}
	}
	return seq
}

func appendBlock(seq []Entry, c Category, n int) []Entry {
	for i := 1; i <= n; i++ {
		seq = append(seq, Entry{Category: c, Index: i})
	}
	return seq
}
