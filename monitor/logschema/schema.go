package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema lists the fields every log event must carry, so emitters can be
// validated centrally.
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"regime_change": {
		Event:    "regime_change",
		Required: []string{"from", "to", "vol_ratio", "return_20d"},
	},
	"rebalance": {
		Event:    "rebalance",
		Required: []string{"regime", "effective_pct", "margin_budget", "targets"},
	},
	"rebalance_skip": {
		Event:    "rebalance_skip",
		Required: []string{"regime", "reason"},
	},
	"governor_update": {
		Event:    "governor_update",
		Required: []string{"drawdown", "risk_scale", "peak_equity"},
	},
}

// Known returns all event names, for documentation tooling.
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks that fields contain every key the event's schema requires.
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
