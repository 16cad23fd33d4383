package sketch

import (
	"slices"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/palette"
)

// MaxDraws caps rejection sampling. When it is reached the last candidate is
// accepted as is.
const MaxDraws = 1000

// ValidationContext is what a policy may consult besides the candidate.
type ValidationContext struct {
	Index       int
	Palette     string
	BackgroundL float64        // lightness of the background colour
	Previous    *fluid.Options // options of the layer below, nil for layer 0
	FixedView   bool           // the composition pins the view blend
}

// Policy accepts or rejects a candidate option record.
type Policy interface {
	Validate(opts fluid.Options, ctx ValidationContext) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(opts fluid.Options, ctx ValidationContext) bool

func (f PolicyFunc) Validate(opts fluid.Options, ctx ValidationContext) bool { return f(opts, ctx) }

// BasicPolicy forbids only the multiply/multiply pairing, which renders black.
type BasicPolicy struct{}

func (BasicPolicy) Validate(opts fluid.Options, _ ValidationContext) bool {
	return opts.BlendKey() != "4-4"
}

// blendRule rejects its pass-view pairings when dt is below minDT. A zero
// minDT rejects them outright. upper limits the rule to layers above the first.
type blendRule struct {
	keys  []string
	minDT float64
	upper bool
}

func (r blendRule) rejects(key string, dt float64, index int) bool {
	if r.upper && index == 0 {
		return false
	}
	return slices.Contains(r.keys, key) && (r.minDT == 0 || dt < r.minDT)
}

var (
	blackWhiteRules = []blendRule{
		{keys: []string{"1-2"}},
		{keys: []string{"0-5"}, minDT: 0.25},
		{keys: []string{"1-3", "1-4"}, minDT: 0.3},
		{keys: []string{"2-4"}, minDT: 0.7},
		{keys: []string{"4-2", "4-5"}, minDT: 0.5},
	}
	blackWhiteDarkRules = []blendRule{
		{keys: []string{"0-4"}, minDT: 0.5},
		{keys: []string{"0-3", "2-5"}, minDT: 0.75},
		{keys: []string{"2-3", "3-2", "3-3", "4-3"}},
	}
	blackWhiteLightRules = []blendRule{
		{keys: []string{"0-2"}},
		{keys: []string{"0-3", "2-5"}, minDT: 0.45},
		{keys: []string{"2-3"}, minDT: 0.8},
	}
	monoRules = []blendRule{
		{keys: []string{"2-3", "2-5"}, upper: true},
		{keys: []string{"3-2"}, minDT: 0.7},
	}
	analogousRules = []blendRule{
		{keys: []string{"2-5"}},
		{keys: []string{"1-4", "2-2", "3-2"}, upper: true},
		{keys: []string{"0-3", "0-5", "1-5"}, minDT: 0.5},
		{keys: []string{"1-2", "1-3", "1-4"}, minDT: 0.3},
		{keys: []string{"2-3", "3-2", "4-2", "4-3"}, minDT: 0.6},
		{keys: []string{"2-4"}, minDT: 0.75},
		{keys: []string{"4-5"}, minDT: 0.5},
	}
	// Apply to every palette.
	dtFloorRules = []blendRule{
		{keys: []string{"0-4", "1-5"}, minDT: 0.3},
		{keys: []string{"2-2"}, minDT: 0.8},
		{keys: []string{"2-4"}, minDT: 0.5},
		{keys: []string{"3-2"}, minDT: 0.4},
		{keys: []string{"3-3"}, minDT: 0.45},
	}
)

// StrictPolicy adds the hand-tuned palette rules on top of BasicPolicy:
// pairings that render badly for a palette are banned or need a minimum dt,
// and a layer may not repeat the additive or multiply view of the layer below.
// Black&White splits on whether the background is dark.
type StrictPolicy struct{}

func (StrictPolicy) Validate(opts fluid.Options, ctx ValidationContext) bool {
	if !(BasicPolicy{}).Validate(opts, ctx) {
		return false
	}
	// With a pinned view every layer repeats it.
	if p := ctx.Previous; p != nil && !ctx.FixedView {
		v := opts.BlendModeView
		if (v == fluid.BlendAdditive || v == fluid.BlendMultiply) && p.BlendModeView == v {
			return false
		}
	}

	rules := slices.Clone(dtFloorRules)
	switch ctx.Palette {
	case palette.BlackWhite:
		rules = append(rules, blackWhiteRules...)
		if ctx.BackgroundL < 0.5 {
			rules = append(rules, blackWhiteDarkRules...)
		} else {
			rules = append(rules, blackWhiteLightRules...)
		}
	case palette.Mono:
		rules = append(rules, monoRules...)
	case palette.Analogous:
		rules = append(rules, analogousRules...)
	}

	key := opts.BlendKey()
	for _, r := range rules {
		if r.rejects(key, opts.DT, ctx.Index) {
			return false
		}
	}
	return true
}

// PolicyFor returns the policy named by the config.
func PolicyFor(name string) Policy {
	if name == config.ValidatorStrict {
		return StrictPolicy{}
	}
	return BasicPolicy{}
}
