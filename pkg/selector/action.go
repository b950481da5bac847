package selector

import "fmt"

// ActionKind discriminates the action union.
type ActionKind string

// Supported action kinds.
const (
	ActionTap       ActionKind = "tap"
	ActionLongPress ActionKind = "longPress"
	ActionSwipe     ActionKind = "swipe"
	ActionTypeText  ActionKind = "type"
	ActionWait      ActionKind = "wait"
	ActionBack      ActionKind = "back"
)

// SwipeDirection is the swipe axis and sense.
type SwipeDirection string

// Swipe directions.
const (
	SwipeUp    SwipeDirection = "up"
	SwipeDown  SwipeDirection = "down"
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// TapParams configures tap and longPress. Offsets shift the touch point
// from the element center, in pixels.
type TapParams struct {
	DurationMs int `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	OffsetX    int `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetY    int `json:"offset_y,omitempty" yaml:"offset_y,omitempty"`
}

// SwipeParams configures swipe. Distance is in device-independent pixels so
// recordings replay consistently across densities.
type SwipeParams struct {
	Direction   SwipeDirection `json:"direction" yaml:"direction"`
	DistanceDip float64        `json:"distance_dip" yaml:"distance_dip"`
	DurationMs  int            `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// TypeParams configures text entry.
type TypeParams struct {
	Text       string `json:"text" yaml:"text"`
	ClearFirst bool   `json:"clear_first,omitempty" yaml:"clear_first,omitempty"`
	Submit     bool   `json:"submit,omitempty" yaml:"submit,omitempty"`
}

// WaitParams configures wait.
type WaitParams struct {
	DurationMs int `json:"duration_ms" yaml:"duration_ms"`
}

// Action is a tagged union: Type names the kind and exactly the matching
// parameter arm is set. Back carries no parameters.
type Action struct {
	Type      ActionKind   `json:"type" yaml:"type"`
	Tap       *TapParams   `json:"tap,omitempty" yaml:"tap,omitempty"`
	LongPress *TapParams   `json:"long_press,omitempty" yaml:"long_press,omitempty"`
	Swipe     *SwipeParams `json:"swipe,omitempty" yaml:"swipe,omitempty"`
	TypeText  *TypeParams  `json:"type_text,omitempty" yaml:"type_text,omitempty"`
	Wait      *WaitParams  `json:"wait,omitempty" yaml:"wait,omitempty"`
}

// ActionParams is the flat caller-facing parameter object. BuildAction
// converts it into the discriminated Action union, applying defaults.
type ActionParams struct {
	Kind            ActionKind
	PressDurationMs int
	OffsetX         int
	OffsetY         int
	SwipeDirection  SwipeDirection
	SwipeDistance   float64
	SwipeDurationMs int
	Text            string
	ClearFirst      bool
	Submit          bool
	WaitMs          int
}

// Default action parameters.
const (
	defaultLongPressMs   = 800
	defaultSwipeDip      = 200
	defaultSwipeMs       = 300
	defaultWaitMs        = 1000
	defaultSwipeAxisDown = SwipeDown
)

// BuildAction converts flat parameters into the action union. Unknown kinds
// are an error so typos fail at build time rather than at replay.
func BuildAction(p ActionParams) (Action, error) {
	switch p.Kind {
	case ActionTap:
		a := Action{Type: ActionTap}
		if p.PressDurationMs > 0 || p.OffsetX != 0 || p.OffsetY != 0 {
			a.Tap = &TapParams{DurationMs: p.PressDurationMs, OffsetX: p.OffsetX, OffsetY: p.OffsetY}
		}
		return a, nil
	case ActionLongPress:
		ms := p.PressDurationMs
		if ms <= 0 {
			ms = defaultLongPressMs
		}
		return Action{
			Type:      ActionLongPress,
			LongPress: &TapParams{DurationMs: ms, OffsetX: p.OffsetX, OffsetY: p.OffsetY},
		}, nil
	case ActionSwipe:
		dir := p.SwipeDirection
		if dir == "" {
			dir = defaultSwipeAxisDown
		}
		dist := p.SwipeDistance
		if dist <= 0 {
			dist = defaultSwipeDip
		}
		ms := p.SwipeDurationMs
		if ms <= 0 {
			ms = defaultSwipeMs
		}
		return Action{
			Type:  ActionSwipe,
			Swipe: &SwipeParams{Direction: dir, DistanceDip: dist, DurationMs: ms},
		}, nil
	case ActionTypeText:
		return Action{
			Type:     ActionTypeText,
			TypeText: &TypeParams{Text: p.Text, ClearFirst: p.ClearFirst, Submit: p.Submit},
		}, nil
	case ActionWait:
		ms := p.WaitMs
		if ms <= 0 {
			ms = defaultWaitMs
		}
		return Action{Type: ActionWait, Wait: &WaitParams{DurationMs: ms}}, nil
	case ActionBack:
		return Action{Type: ActionBack}, nil
	default:
		return Action{}, fmt.Errorf("unknown action kind %q", p.Kind)
	}
}

// arm returns the parameter arm matching the action type, or nil when the
// type carries no parameters or the arm is unset.
func (a *Action) arm() (any, bool) {
	switch a.Type {
	case ActionTap:
		return a.Tap, true // optional for tap
	case ActionLongPress:
		if a.LongPress == nil {
			return nil, false
		}
		return a.LongPress, true
	case ActionSwipe:
		if a.Swipe == nil {
			return nil, false
		}
		return a.Swipe, true
	case ActionTypeText:
		if a.TypeText == nil {
			return nil, false
		}
		return a.TypeText, true
	case ActionWait:
		if a.Wait == nil {
			return nil, false
		}
		return a.Wait, true
	case ActionBack:
		return nil, true
	default:
		return nil, false
	}
}
