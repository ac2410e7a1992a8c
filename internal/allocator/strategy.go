package allocator

// Strategy selects the active placement policy. Transitions between
// FirstFit/BestFit/WorstFit are free; transitioning into Buddy
// re-initializes the buddy view over the same buffer (spec.md §4.1
// set_strategy) and leaves any linear allocations undefined, as
// documented in SPEC_FULL.md §9.
type Strategy int

const (
	FirstFit Strategy = iota
	BestFit
	WorstFit
	Buddy
)

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first fit"
	case BestFit:
		return "best fit"
	case WorstFit:
		return "worst fit"
	case Buddy:
		return "buddy"
	default:
		return "unknown"
	}
}

// ParseStrategy maps the REPL's textual strategy names (spec.md §6) to a
// Strategy value.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "first fit":
		return FirstFit, true
	case "best fit":
		return BestFit, true
	case "worst fit":
		return WorstFit, true
	case "buddy":
		return Buddy, true
	default:
		return 0, false
	}
}
