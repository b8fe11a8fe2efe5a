package models

// VisualUpdate is a partial change to VisualProperties; nil fields are
// left untouched on merge.
type VisualUpdate struct {
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	ForegroundColor *string  `json:"foregroundColor,omitempty"`
	NeedleColor     *string  `json:"needleColor,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
	Visible         *bool    `json:"visible,omitempty"`
	ShowText        *bool    `json:"showText,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty"`
	FontSize        *float64 `json:"fontSize,omitempty"`
	FontWeight      *string  `json:"fontWeight,omitempty"`
	FontStyle       *string  `json:"fontStyle,omitempty"`
}

// ElementUpdate is a partial change to an Element. The id and type of an
// element are fixed at creation.
type ElementUpdate struct {
	Sensor         *string       `json:"sensor,omitempty"`
	Animated       *bool         `json:"animated,omitempty"`
	AnimationSpeed *float64      `json:"animationSpeed,omitempty"`
	Visual         *VisualUpdate `json:"visual,omitempty"`
}

// Apply merges the update into the element in place.
func (u *ElementUpdate) Apply(el *Element) {
	if u.Sensor != nil {
		el.Sensor = *u.Sensor
	}
	if u.Animated != nil {
		el.Animated = *u.Animated
	}
	if u.AnimationSpeed != nil {
		el.AnimationSpeed = *u.AnimationSpeed
	}
	if u.Visual != nil {
		u.Visual.Apply(&el.Visual)
	}
}

// Apply merges the update into the visual properties in place.
func (u *VisualUpdate) Apply(v *VisualProperties) {
	if u.X != nil {
		v.X = *u.X
	}
	if u.Y != nil {
		v.Y = *u.Y
	}
	if u.Width != nil {
		v.Width = *u.Width
	}
	if u.Height != nil {
		v.Height = *u.Height
	}
	if u.BackgroundColor != nil {
		v.BackgroundColor = *u.BackgroundColor
	}
	if u.ForegroundColor != nil {
		v.ForegroundColor = *u.ForegroundColor
	}
	if u.NeedleColor != nil {
		v.NeedleColor = *u.NeedleColor
	}
	if u.Opacity != nil {
		v.Opacity = *u.Opacity
	}
	if u.Visible != nil {
		v.Visible = *u.Visible
	}
	if u.ShowText != nil {
		v.ShowText = *u.ShowText
	}
	if u.FontFamily != nil {
		v.FontFamily = *u.FontFamily
	}
	if u.FontSize != nil {
		v.FontSize = *u.FontSize
	}
	if u.FontWeight != nil {
		v.FontWeight = *u.FontWeight
	}
	if u.FontStyle != nil {
		v.FontStyle = *u.FontStyle
	}
}
