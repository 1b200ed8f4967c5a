// Package effect defines the closed union of one-shot presentation
// instructions a state transition may attach to the state it returns.
//
// An effect is not state: it is an instruction (navigate, show a message,
// show a dialog) that must reach the presentation layer exactly once, even
// though the state that carries it may be observed many times. Every variant
// is an immutable value with a static Kind tag; handler dispatch is keyed on
// that tag, never on open-ended reflection.
package effect

import "github.com/lightfold/statefx/intent"

// Kind is the static tag of an effect variant, used for handler lookup.
type Kind string

const (
	KindNavigateTo    Kind = "statefx_effect_navigate_to"
	KindPopNavigation Kind = "statefx_effect_pop_navigation"
	KindShowMessage   Kind = "statefx_effect_show_message"
	KindShowDialog    Kind = "statefx_effect_show_dialog"
)

// Effect is a sealed union. Only the variants in this package can implement
// it, which keeps registry dispatch exhaustive.
type Effect interface {
	Kind() Kind
	// effect prevents external packages from adding variants.
	effect()
}

// Interactive is implemented by effects that await a user response. The
// token correlates the effect to the resolution event the consumer will
// eventually post back.
type Interactive interface {
	Effect
	IntentToken() intent.Token
}

// Severity classifies a ShowMessage for presentation emphasis.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// NavigateTo instructs the consumer to move to a route. Replace indicates
// the current entry should be replaced rather than pushed over.
type NavigateTo struct {
	Route   string
	Params  map[string]string
	Replace bool
}

func (NavigateTo) Kind() Kind { return KindNavigateTo }
func (NavigateTo) effect()    {}

// PopNavigation instructs the consumer to pop the current route, optionally
// handing a result to the route below.
type PopNavigation struct {
	Result any
}

func (PopNavigation) Kind() Kind { return KindPopNavigation }
func (PopNavigation) effect()    {}

// ShowMessage instructs the consumer to surface transient text (a toast or
// snackbar).
type ShowMessage struct {
	Text     string
	Severity Severity
}

func (ShowMessage) Kind() Kind { return KindShowMessage }
func (ShowMessage) effect()    {}

// Warning builds the ShowMessage used when a caller-driven protocol
// violation is guarded rather than raised.
func Warning(text string) ShowMessage {
	return ShowMessage{Text: text, Severity: SeverityWarning}
}

// ShowDialog instructs the consumer to present an interactive dialog. It is
// the only interactive variant: Intent is mandatory and correlates the
// dialog to the resolution event carrying the user's chosen action.
type ShowDialog struct {
	Intent      intent.Token
	Title       string
	Message     string
	Actions     []DialogActionSpec
	Dismissible bool
	Icon        string
}

func (ShowDialog) Kind() Kind { return KindShowDialog }
func (ShowDialog) effect()    {}

func (d ShowDialog) IntentToken() intent.Token { return d.Intent }

// NewShowDialog constructs an interactive dialog effect, minting its intent
// token from the given correlator so the issuing container can later match
// the resolution.
func NewShowDialog(
	c *intent.Correlator,
	title, message string,
	actions ...DialogActionSpec,
) ShowDialog {
	return ShowDialog{
		Intent:      c.Issue(),
		Title:       title,
		Message:     message,
		Actions:     actions,
		Dismissible: true,
	}
}
