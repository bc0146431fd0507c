package config

import (
	"fmt"

	"github.com/derailed/tcell/v2"
)

// Color is a theme color: a "#rrggbb" value or a tcell color name.
type Color string

// DefaultColor leaves the terminal's own color in place.
const DefaultColor Color = "default"

func NewColor(c string) Color {
	return Color(c)
}

// String returns the color as "#rrggbb", or "-" for the terminal default.
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color converts c for tcell.
func (c Color) Color() tcell.Color {
	if c == DefaultColor {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// EmailColors colors list rows by folder and status.
type EmailColors struct {
	UnreadColor    Color `yaml:"unreadColor"`
	ReadColor      Color `yaml:"readColor"`
	SentColor      Color `yaml:"sentColor"`
	DraftColor     Color `yaml:"draftColor"`
	ScheduledColor Color `yaml:"scheduledColor"`
	DeletedColor   Color `yaml:"deletedColor"`
}

// StatusColors colors the status bar per notification kind.
type StatusColors struct {
	InfoColor    Color `yaml:"infoColor"`
	SuccessColor Color `yaml:"successColor"`
	WarningColor Color `yaml:"warningColor"`
	ErrorColor   Color `yaml:"errorColor"`
}

// BorderColors colors pane borders; FocusColor marks the selected row.
type BorderColors struct {
	FgColor    Color `yaml:"fgColor"`
	FocusColor Color `yaml:"focusColor"`
}

// TitleColors colors pane titles.
type TitleColors struct {
	FgColor Color `yaml:"fgColor"`
}

// FrameColors groups the pane chrome.
type FrameColors struct {
	Border BorderColors `yaml:"border"`
	Title  TitleColors  `yaml:"title"`
}

// BodyColors is the base text and background.
type BodyColors struct {
	FgColor Color `yaml:"fgColor"`
	BgColor Color `yaml:"bgColor"`
}

// ColorsConfig is the "maildash" section of a theme file.
type ColorsConfig struct {
	Body   BodyColors   `yaml:"body"`
	Frame  FrameColors  `yaml:"frame"`
	Email  EmailColors  `yaml:"email"`
	Status StatusColors `yaml:"status"`
}

// DefaultColors is the built-in dark palette.
func DefaultColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{FgColor: "#f8f8f2", BgColor: "#282a36"},
		Frame: FrameColors{
			Border: BorderColors{FgColor: "#44475a", FocusColor: "#6272a4"},
			Title:  TitleColors{FgColor: "#bd93f9"},
		},
		Email: EmailColors{
			UnreadColor:    "#ffb86c",
			ReadColor:      "#f8f8f2",
			SentColor:      "#50fa7b",
			DraftColor:     "#f1fa8c",
			ScheduledColor: "#8be9fd",
			DeletedColor:   "#6272a4",
		},
		Status: StatusColors{
			InfoColor:    "#8be9fd",
			SuccessColor: "#50fa7b",
			WarningColor: "#ffb86c",
			ErrorColor:   "#ff5555",
		},
	}
}
