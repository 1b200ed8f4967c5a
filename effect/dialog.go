package effect

// ActionKind is the semantic role of a dialog action. The display label
// defaults from the kind and can be overridden per action.
type ActionKind string

const (
	ActionConfirm     ActionKind = "confirm"
	ActionCancel      ActionKind = "cancel"
	ActionDestructive ActionKind = "destructive"
	ActionNeutral     ActionKind = "neutral"
)

// DialogActionSpec describes one user-facing dialog action. It is owned by
// the effect that created it and never mutated after construction.
type DialogActionSpec struct {
	Action  ActionKind
	Label   string
	Primary bool
}

// DisplayLabel returns the label override, or the kind-derived default.
func (s DialogActionSpec) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	switch s.Action {
	case ActionConfirm:
		return "OK"
	case ActionCancel:
		return "Cancel"
	case ActionDestructive:
		return "Delete"
	default:
		return "Dismiss"
	}
}

// ActionOption configures a DialogActionSpec at construction.
type ActionOption func(*DialogActionSpec)

// WithLabel overrides the kind-derived display text.
func WithLabel(label string) ActionOption {
	return func(s *DialogActionSpec) { s.Label = label }
}

// AsPrimary flags the action for visual emphasis.
func AsPrimary() ActionOption {
	return func(s *DialogActionSpec) { s.Primary = true }
}

// Action builds an action spec of the given kind.
func Action(kind ActionKind, opts ...ActionOption) DialogActionSpec {
	spec := DialogActionSpec{Action: kind}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}
