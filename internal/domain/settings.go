package domain

// RuleOverride holds a user's per-rule preference. Nil fields mean
// "use the rule's default".
type RuleOverride struct {
	IsActive  *bool    `json:"isActive,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// UserSettings carries everything the rule catalog needs to derive
// per-rule settings: the base currency all totals are normalized into
// and any per-rule overrides, keyed by rule name.
type UserSettings struct {
	UserID       string                  `json:"userId"`
	BaseCurrency string                  `json:"baseCurrency"`
	Rules        map[string]RuleOverride `json:"rules,omitempty"`
}

// Override returns the override for a rule name, or the zero value.
func (s UserSettings) Override(name string) RuleOverride {
	if s.Rules == nil {
		return RuleOverride{}
	}
	return s.Rules[name]
}
