package naming

import "github.com/hpungsan/msbatch/internal/sequence"

// Resolve returns the name of the entry at position pos of seq. Positions
// outside seq yield "".
//
// Imported names are consumed per category in sequence order: the n-th QC
// entry takes the n-th imported name, whatever block it sits in. Entries
// beyond the end of the imported list fall back to "{Category}{Index}".
func Resolve(seq []sequence.Entry, pos int, cfg Config) string {
	if pos < 0 || pos >= len(seq) {
		return ""
	}
	e := seq[pos]

	switch cfg.Mode {
	case ModeAutoBuild:
		return autoBuild(e, cfg)
	case ModeImportedList:
		ordinal := 0
		for _, prev := range seq[:pos] {
			if prev.Category == e.Category {
				ordinal++
			}
		}
		return imported(e, ordinal, cfg.Imported)
	default:
		// ModeManualEntry has no stored per-entry names.
		return plain(e)
	}
}

// ResolveAll names every entry of seq in one pass.
func ResolveAll(seq []sequence.Entry, cfg Config) []string {
	names := make([]string, len(seq))
	var ordinals sequence.Counts
	for i, e := range seq {
		switch cfg.Mode {
		case ModeAutoBuild:
			names[i] = autoBuild(e, cfg)
		case ModeImportedList:
			var ordinal int
			if e.Category.Valid() {
				ordinal = ordinals[e.Category]
				ordinals[e.Category]++
			}
			names[i] = imported(e, ordinal, cfg.Imported)
		default:
			names[i] = plain(e)
		}
	}
	return names
}

func imported(e sequence.Entry, ordinal int, names []string) string {
	if ordinal < len(names) {
		return names[ordinal]
	}
	return plain(e)
}

// Shortfall reports, per category, how many entries of seq have no imported
// name and fall back to the plain name.
func Shortfall(seq []sequence.Entry, names []string) map[string]int {
	counts := sequence.Tally(seq)
	out := make(map[string]int)
	for _, c := range sequence.Categories {
		if missing := counts[c] - len(names); missing > 0 {
			out[c.String()] = missing
		}
	}
	return out
}
