package prompts

// Override carries operator-supplied prompt framing for one stage. Empty
// fields keep the built-in defaults.
type Override struct {
	Role      string `toml:"role"`
	Goal      string `toml:"goal"`
	Backstory string `toml:"backstory"`
}

// Config holds the per-stage prompt overrides.
type Config struct {
	Risk     Override `toml:"risk"`
	Decision Override `toml:"decision"`
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	mergeOverride(&c.Risk, &overlay.Risk)
	mergeOverride(&c.Decision, &overlay.Decision)
}

func mergeOverride(base, overlay *Override) {
	if overlay.Role != "" {
		base.Role = overlay.Role
	}
	if overlay.Goal != "" {
		base.Goal = overlay.Goal
	}
	if overlay.Backstory != "" {
		base.Backstory = overlay.Backstory
	}
}

func (c *Config) override(stage Stage) Override {
	switch stage {
	case StageRisk:
		return c.Risk
	case StageDecision:
		return c.Decision
	default:
		return Override{}
	}
}
