package targeting

import "time"

const (
	// EnvironmentAll makes a toggle independent of the request environment.
	EnvironmentAll = "all"
	// DefaultEnvironment is assumed when the request does not name one.
	DefaultEnvironment = "production"
)

// Gate names the check that rejected a feature.
type Gate string

const (
	GateNone        Gate = ""
	GateNotFound    Gate = "not_found"
	GateDisabled    Gate = "disabled"
	GateWindow      Gate = "window"
	GateEnvironment Gate = "environment"
	GateRollout     Gate = "rollout"
	GateTargeting   Gate = "targeting"
)

// FeatureToggle is the evaluation view of a catalog feature.
type FeatureToggle struct {
	ID                string
	Name              string
	Enabled           bool
	Environment       string
	RolloutPercentage int
	ActiveFrom        time.Time
	ActiveTo          time.Time
	TargetingEnabled  bool
	Segments          []Segment
}

// Alert is the evaluation view of a catalog alert.
type Alert struct {
	ID               string
	Title            string
	Body             string
	Theme            string
	Enabled          bool
	ActiveFrom       time.Time
	ActiveTo         time.Time
	TargetingEnabled bool
	Segments         []Segment
	CreatedAt        time.Time
}

// AlertView is what end users receive; targeting internals are left out.
type AlertView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Theme      string    `json:"theme"`
	ActiveFrom time.Time `json:"isActiveFrom"`
	ActiveTo   time.Time `json:"isActiveTo"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Decision is the outcome of a feature evaluation and the gate that decided it.
type Decision struct {
	Enabled bool
	Gate    Gate
}

func activeAt(from, to, now time.Time) bool {
	return !now.Before(from) && !now.After(to)
}

func targeted(enabled bool, segments []Segment) bool {
	return enabled && len(segments) > 0
}

// ExplainFeature runs the feature gates in order and reports the first one
// that fails.
func ExplainFeature(toggle FeatureToggle, user *UserContext, now time.Time) Decision {
	if !toggle.Enabled {
		return Decision{Gate: GateDisabled}
	}

	if !activeAt(toggle.ActiveFrom, toggle.ActiveTo, now) {
		return Decision{Gate: GateWindow}
	}

	if toggle.Environment != EnvironmentAll {
		env := DefaultEnvironment
		if user != nil && user.Environment != "" {
			env = user.Environment
		}
		if toggle.Environment != env {
			return Decision{Gate: GateEnvironment}
		}
	}

	if toggle.RolloutPercentage < FullRollout {
		userID := AnonymousUserID
		if user != nil && user.UserID != "" {
			userID = user.UserID
		}
		if !InRollout(userID, toggle.Name, toggle.RolloutPercentage) {
			return Decision{Gate: GateRollout}
		}
	}

	if targeted(toggle.TargetingEnabled, toggle.Segments) {
		if user == nil || !MatchesAny(*user, toggle.Segments) {
			return Decision{Gate: GateTargeting}
		}
	}

	return Decision{Enabled: true}
}

// EvaluateFeature reports whether toggle is on for user at now.
func EvaluateFeature(toggle FeatureToggle, user *UserContext, now time.Time) bool {
	return ExplainFeature(toggle, user, now).Enabled
}

// ExplainFeatures evaluates every requested name against catalog. Names with
// no catalog entry are reported as GateNotFound.
func ExplainFeatures(names []string, catalog []FeatureToggle, user *UserContext, now time.Time) map[string]Decision {
	byName := make(map[string]FeatureToggle, len(catalog))
	for _, toggle := range catalog {
		if _, seen := byName[toggle.Name]; !seen {
			byName[toggle.Name] = toggle
		}
	}

	decisions := make(map[string]Decision, len(names))
	for _, name := range names {
		if _, done := decisions[name]; done {
			continue
		}
		toggle, ok := byName[name]
		if !ok {
			decisions[name] = Decision{Gate: GateNotFound}
			continue
		}
		decisions[name] = ExplainFeature(toggle, user, now)
	}
	return decisions
}

// EvaluateFeatures maps each requested name to its result. Unknown names are false.
func EvaluateFeatures(names []string, catalog []FeatureToggle, user *UserContext, now time.Time) map[string]bool {
	decisions := ExplainFeatures(names, catalog, user, now)
	results := make(map[string]bool, len(decisions))
	for name, decision := range decisions {
		results[name] = decision.Enabled
	}
	return results
}

// AlertVisible reports whether alert should be shown to user at now.
func AlertVisible(alert Alert, user *UserContext, now time.Time) bool {
	if !alert.Enabled {
		return false
	}
	if !activeAt(alert.ActiveFrom, alert.ActiveTo, now) {
		return false
	}
	if !targeted(alert.TargetingEnabled, alert.Segments) {
		return true
	}
	if user == nil {
		return false
	}
	return MatchesAny(*user, alert.Segments)
}

// EvaluateAlerts returns the public view of the visible alerts, in input order.
func EvaluateAlerts(alerts []Alert, user *UserContext, now time.Time) []AlertView {
	views := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		if AlertVisible(alert, user, now) {
			views = append(views, alert.View())
		}
	}
	return views
}

// View strips targeting fields from the alert.
func (a Alert) View() AlertView {
	return AlertView{
		ID:         a.ID,
		Title:      a.Title,
		Body:       a.Body,
		Theme:      a.Theme,
		ActiveFrom: a.ActiveFrom,
		ActiveTo:   a.ActiveTo,
		CreatedAt:  a.CreatedAt,
	}
}
