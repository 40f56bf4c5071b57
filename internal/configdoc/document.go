// Package configdoc implements the transit-display configuration document:
// a strongly-typed settings tree with documented defaults, range clamping,
// partial-overlay merging and a canonical serialization used for
// fingerprinting. The package is pure value logic and performs no I/O.
package configdoc

// FontSpec describes one font role of the display.
type FontSpec struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
	Weight string `json:"weight"`
}

// Layout controls how stop cards are arranged on the display.
type Layout struct {
	View                string   `json:"view"`
	ColumnsPerRow       int      `json:"columns_per_row"`
	StopOrder           []string `json:"stop_order"`
	PaddingBetweenCards int      `json:"padding_between_cards"`
	CardBorderRadius    int      `json:"card_border_radius"`
}

// Display holds per-stop departure list settings and the visibility flags.
type Display struct {
	DeparturesPerStop       int      `json:"departures_per_stop"`
	MaxDepartureAgeSeconds  int      `json:"max_departure_age_seconds"`
	ShowWheelchairIcon      bool     `json:"show_wheelchair_icon"`
	ShowStopLocation        bool     `json:"show_stop_location"`
	HighlightSoonDepartures bool     `json:"highlight_soon_departures"`
	ShowStopCode            bool     `json:"show_stop_code"`
	ShowDirection           bool     `json:"show_direction"`
	ShowStopName            bool     `json:"show_stop_name"`
	GroupByDirection        bool     `json:"group_by_direction"`
	ShowRouteShortName      bool     `json:"show_route_short_name"`
	Use24hTime              bool     `json:"use_24h_time"`
	FilterRoutes            []string `json:"filter_routes"`
}

// Fonts maps the four font roles of the display.
type Fonts struct {
	Title    FontSpec `json:"title"`
	Subtitle FontSpec `json:"subtitle"`
	Text     FontSpec `json:"text"`
	Time     FontSpec `json:"time"`
}

// ClockStyle describes how the corner clock is rendered.
type ClockStyle struct {
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
	FontWeight string `json:"font_weight"`
	TextColor  string `json:"text_color"`
}

// Colors holds the six color roles of the display.
type Colors struct {
	Text               string `json:"text"`
	Background         string `json:"background"`
	CardBackground     string `json:"card_background"`
	CardBorder         string `json:"card_border"`
	HighlightDeparture string `json:"highlight_departure"`
	ClockText          string `json:"clock_text"`
}

// Emojis are the per-mode route icons.
type Emojis struct {
	Bus   string `json:"bus"`
	Tram  string `json:"tram"`
	Metro string `json:"metro"`
}

// Style groups the visual settings: fonts, clock style, colors and emojis.
type Style struct {
	ColorByRoute bool       `json:"color_by_route"`
	CardShadow   bool       `json:"card_shadow"`
	CardBorder   bool       `json:"card_border"`
	Fonts        Fonts      `json:"fonts"`
	Clock        ClockStyle `json:"clock"`
	Colors       Colors     `json:"colors"`
	CustomEmojis Emojis     `json:"custom_emojis"`
}

// Clock controls clock visibility and placement.
type Clock struct {
	Show     bool   `json:"show"`
	Position string `json:"position"`
}

// HighlightZone configures the band of imminent departures pinned to the top
// of the display.
type HighlightZone struct {
	Enabled          bool   `json:"enabled"`
	MinutesThreshold int    `json:"minutes_threshold"`
	MaxItems         int    `json:"max_items"`
	FontSize         int    `json:"font_size"`
	FontFamily       string `json:"font_family"`
	TextColor        string `json:"text_color"`
	ShowRouteIcon    bool   `json:"show_route_icon"`
	ShowCountdown    bool   `json:"show_countdown"`
}

// Document is the full configuration tree. A Document is always completely
// populated: every numeric field lies within its declared range and every
// enum field holds one of its allowed values.
type Document struct {
	CustomTitle            string        `json:"custom_title"`
	RefreshIntervalSeconds int           `json:"refresh_interval_seconds"`
	Layout                 Layout        `json:"layout"`
	Display                Display       `json:"display"`
	Style                  Style         `json:"style"`
	Clock                  Clock         `json:"clock"`
	TopHighlightZone       HighlightZone `json:"top_highlight_zone"`
}

var (
	viewOptions          = []string{"grid", "list"}
	clockPositionOptions = []string{"top-left", "top-right", "bottom-left", "bottom-right"}
)

// Defaults returns the documented default document. The ranges clamped
// elsewhere in the package are noted next to each numeric field.
func Defaults() Document {
	return Document{
		CustomTitle:            "",
		RefreshIntervalSeconds: 30, // 5..120
		Layout: Layout{
			View:                "grid",
			ColumnsPerRow:       3, // 1..5
			StopOrder:           []string{},
			PaddingBetweenCards: 16, // 0..64
			CardBorderRadius:    12, // 0..30
		},
		Display: Display{
			DeparturesPerStop:      5,   // 1..10
			MaxDepartureAgeSeconds: 180, // 30..600
			FilterRoutes:           []string{},
		},
		Style: Style{
			ColorByRoute: true,
			CardShadow:   true,
			CardBorder:   true,
			Fonts: Fonts{
				Title:    FontSpec{Family: "Roboto", Size: 32, Weight: "bold"},
				Subtitle: FontSpec{Family: "Roboto", Size: 24, Weight: "normal"},
				Text:     FontSpec{Family: "Roboto", Size: 16, Weight: "normal"},
				Time:     FontSpec{Family: "Roboto Mono", Size: 20, Weight: "medium"},
			},
			Clock: ClockStyle{
				FontFamily: "Roboto",
				FontSize:   20, // 10..60
				FontWeight: "bold",
				TextColor:  "#333333",
			},
			Colors: Colors{
				Text:               "#000000",
				Background:         "#ffffff",
				CardBackground:     "#f8f8f8",
				CardBorder:         "#dddddd",
				HighlightDeparture: "#ff0000",
				ClockText:          "#333333",
			},
			CustomEmojis: Emojis{Bus: "🚍", Tram: "🚋", Metro: "🚇"},
		},
		Clock: Clock{Show: true, Position: "top-right"},
		TopHighlightZone: HighlightZone{
			Enabled:          true,
			MinutesThreshold: 5,  // 1..30
			MaxItems:         3,  // 1..10
			FontSize:         22, // 10..40
			FontFamily:       "Roboto",
			TextColor:        "#ff6600",
			ShowRouteIcon:    true,
			ShowCountdown:    true,
		},
	}
}

// clampInt forces v into [lo, hi]. Out-of-range values are not rejected,
// matching the editor's range-bound input widgets.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pickEnum returns v if it is one of the allowed options, otherwise fallback.
func pickEnum(v string, options []string, fallback string) string {
	for _, o := range options {
		if v == o {
			return v
		}
	}
	return fallback
}
