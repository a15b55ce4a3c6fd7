package sequence

// Rule names a placement rule.
type Rule string

const (
	RuleStartOnly              Rule = "start_only"
	RuleEndOnly                Rule = "end_only"
	RuleFixedInterval          Rule = "fixed_interval"
	RuleStartPlusFixedInterval Rule = "start_plus_fixed_interval"
)

// Placement decides where an auxiliary category's blocks go. The concrete
// types are StartOnly, EndOnly, FixedInterval and StartPlusFixedInterval.
// A nil Placement marks the category as a main-sequence member.
type Placement interface {
	Rule() Rule
	isPlacement()
}

// StartOnly emits one block before the main sequence.
type StartOnly struct{}

// EndOnly emits one block after the main sequence.
type EndOnly struct{}

// FixedInterval emits a block before the main sequence and repeats it every
// Interval samples.
type FixedInterval struct {
	Interval int
}

// StartPlusFixedInterval emits StartCount entries before the main sequence
// and a full block every Interval samples. StartCount of 0 means the full
// count.
type StartPlusFixedInterval struct {
	Interval   int
	StartCount int
}

func (StartOnly) Rule() Rule              { return RuleStartOnly }
func (EndOnly) Rule() Rule                { return RuleEndOnly }
func (FixedInterval) Rule() Rule          { return RuleFixedInterval }
func (StartPlusFixedInterval) Rule() Rule { return RuleStartPlusFixedInterval }

func (StartOnly) isPlacement()              {}
func (EndOnly) isPlacement()                {}
func (FixedInterval) isPlacement()          {}
func (StartPlusFixedInterval) isPlacement() {}

// interval returns the repeat interval of p, or 0 if p does not repeat.
func interval(p Placement) int {
	switch v := p.(type) {
	case FixedInterval:
		return clamp(v.Interval)
	case StartPlusFixedInterval:
		return clamp(v.Interval)
	}
	return 0
}

// CategoryConfig is the configuration of one category.
type CategoryConfig struct {
	Enabled   bool
	Count     int
	Placement Placement
}

// Settings holds the configuration of every category, indexed by Category.
// It is a value type: Build never sees later mutations by the caller.
type Settings [numCategories]CategoryConfig

// Get returns the configuration of c, or the zero config for an invalid
// category.
func (s Settings) Get(c Category) CategoryConfig {
	if !c.Valid() {
		return CategoryConfig{}
	}
	return s[c]
}

// With returns a copy of s with c set to cfg.
func (s Settings) With(c Category, cfg CategoryConfig) Settings {
	if c.Valid() {
		s[c] = cfg
	}
	return s
}

// DefaultSettings mirrors the starting point offered to operators: samples
// enabled, QC every 10 and blanks every 5 configured but disabled.
func DefaultSettings() Settings {
	var s Settings
	s[Standard] = CategoryConfig{Placement: StartOnly{}}
	s[Sample] = CategoryConfig{Enabled: true}
	s[QC] = CategoryConfig{Placement: FixedInterval{Interval: 10}}
	s[Blank] = CategoryConfig{Placement: FixedInterval{Interval: 5}}
	return s
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
