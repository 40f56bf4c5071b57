package configdoc

import (
	"encoding/json"
	"strings"
)

// StringList unmarshals either a JSON array of strings or a single
// comma-delimited string (legacy form used by stop_order and filter_routes).
// Entries are trimmed and empty entries dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		var s string
		if err2 := json.Unmarshal(b, &s); err2 != nil {
			return err
		}
		items = strings.Split(s, ",")
	}
	*l = normalizeList(items)
	return nil
}

// copyList clones src so merged documents never alias the base. The result
// is never nil, keeping list leaves JSON-encodable as [] rather than null.
func copyList(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := strings.TrimSpace(it); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Partial mirrors Document with optional fields. A nil leaf or branch means
// "not provided" and falls back to the merge base, never to a zero value.
type Partial struct {
	CustomTitle            *string               `json:"custom_title"`
	RefreshIntervalSeconds *int                  `json:"refresh_interval_seconds"`
	Layout                 *PartialLayout        `json:"layout"`
	Display                *PartialDisplay       `json:"display"`
	Style                  *PartialStyle         `json:"style"`
	Clock                  *PartialClock         `json:"clock"`
	TopHighlightZone       *PartialHighlightZone `json:"top_highlight_zone"`
}

type PartialLayout struct {
	View                *string     `json:"view"`
	ColumnsPerRow       *int        `json:"columns_per_row"`
	StopOrder           *StringList `json:"stop_order"`
	PaddingBetweenCards *int        `json:"padding_between_cards"`
	CardBorderRadius    *int        `json:"card_border_radius"`
}

type PartialDisplay struct {
	DeparturesPerStop       *int        `json:"departures_per_stop"`
	MaxDepartureAgeSeconds  *int        `json:"max_departure_age_seconds"`
	ShowWheelchairIcon      *bool       `json:"show_wheelchair_icon"`
	ShowStopLocation        *bool       `json:"show_stop_location"`
	HighlightSoonDepartures *bool       `json:"highlight_soon_departures"`
	ShowStopCode            *bool       `json:"show_stop_code"`
	ShowDirection           *bool       `json:"show_direction"`
	ShowStopName            *bool       `json:"show_stop_name"`
	GroupByDirection        *bool       `json:"group_by_direction"`
	ShowRouteShortName      *bool       `json:"show_route_short_name"`
	Use24hTime              *bool       `json:"use_24h_time"`
	FilterRoutes            *StringList `json:"filter_routes"`
}

type PartialFontSpec struct {
	Family *string `json:"family"`
	Size   *int    `json:"size"`
	Weight *string `json:"weight"`
}

type PartialFonts struct {
	Title    *PartialFontSpec `json:"title"`
	Subtitle *PartialFontSpec `json:"subtitle"`
	Text     *PartialFontSpec `json:"text"`
	Time     *PartialFontSpec `json:"time"`
}

type PartialClockStyle struct {
	FontFamily *string `json:"font_family"`
	FontSize   *int    `json:"font_size"`
	FontWeight *string `json:"font_weight"`
	TextColor  *string `json:"text_color"`
}

type PartialColors struct {
	Text               *string `json:"text"`
	Background         *string `json:"background"`
	CardBackground     *string `json:"card_background"`
	CardBorder         *string `json:"card_border"`
	HighlightDeparture *string `json:"highlight_departure"`
	ClockText          *string `json:"clock_text"`
}

type PartialEmojis struct {
	Bus   *string `json:"bus"`
	Tram  *string `json:"tram"`
	Metro *string `json:"metro"`
}

type PartialStyle struct {
	ColorByRoute *bool              `json:"color_by_route"`
	CardShadow   *bool              `json:"card_shadow"`
	CardBorder   *bool              `json:"card_border"`
	Fonts        *PartialFonts      `json:"fonts"`
	Clock        *PartialClockStyle `json:"clock"`
	Colors       *PartialColors     `json:"colors"`
	CustomEmojis *PartialEmojis     `json:"custom_emojis"`
}

type PartialClock struct {
	Show     *bool   `json:"show"`
	Position *string `json:"position"`
}

type PartialHighlightZone struct {
	Enabled          *bool   `json:"enabled"`
	MinutesThreshold *int    `json:"minutes_threshold"`
	MaxItems         *int    `json:"max_items"`
	FontSize         *int    `json:"font_size"`
	FontFamily       *string `json:"font_family"`
	TextColor        *string `json:"text_color"`
	ShowRouteIcon    *bool   `json:"show_route_icon"`
	ShowCountdown    *bool   `json:"show_countdown"`
}

// WithDefaults fills every missing leaf of p with its documented default and
// clamps numeric leaves into their declared range.
func WithDefaults(p Partial) Document {
	return Merge(Defaults(), p)
}

// Merge overlays p onto base leaf by leaf. Missing branches fall back to
// base, not to the global defaults: this is how an uploaded partial config
// or a form submission layers onto the previously saved document. Numeric
// leaves are clamped and enum leaves validated on the way in, so the result
// upholds the Document invariants whenever base does.
func Merge(base Document, p Partial) Document {
	d := base
	d.Layout.StopOrder = copyList(base.Layout.StopOrder)
	d.Display.FilterRoutes = copyList(base.Display.FilterRoutes)

	if p.CustomTitle != nil {
		d.CustomTitle = *p.CustomTitle
	}
	if p.RefreshIntervalSeconds != nil {
		d.RefreshIntervalSeconds = clampInt(*p.RefreshIntervalSeconds, 5, 120)
	}
	if l := p.Layout; l != nil {
		if l.View != nil {
			d.Layout.View = pickEnum(*l.View, viewOptions, "grid")
		}
		if l.ColumnsPerRow != nil {
			d.Layout.ColumnsPerRow = clampInt(*l.ColumnsPerRow, 1, 5)
		}
		if l.StopOrder != nil {
			d.Layout.StopOrder = normalizeList(*l.StopOrder)
		}
		if l.PaddingBetweenCards != nil {
			d.Layout.PaddingBetweenCards = clampInt(*l.PaddingBetweenCards, 0, 64)
		}
		if l.CardBorderRadius != nil {
			d.Layout.CardBorderRadius = clampInt(*l.CardBorderRadius, 0, 30)
		}
	}
	if dp := p.Display; dp != nil {
		if dp.DeparturesPerStop != nil {
			d.Display.DeparturesPerStop = clampInt(*dp.DeparturesPerStop, 1, 10)
		}
		if dp.MaxDepartureAgeSeconds != nil {
			d.Display.MaxDepartureAgeSeconds = clampInt(*dp.MaxDepartureAgeSeconds, 30, 600)
		}
		setBool(&d.Display.ShowWheelchairIcon, dp.ShowWheelchairIcon)
		setBool(&d.Display.ShowStopLocation, dp.ShowStopLocation)
		setBool(&d.Display.HighlightSoonDepartures, dp.HighlightSoonDepartures)
		setBool(&d.Display.ShowStopCode, dp.ShowStopCode)
		setBool(&d.Display.ShowDirection, dp.ShowDirection)
		setBool(&d.Display.ShowStopName, dp.ShowStopName)
		setBool(&d.Display.GroupByDirection, dp.GroupByDirection)
		setBool(&d.Display.ShowRouteShortName, dp.ShowRouteShortName)
		setBool(&d.Display.Use24hTime, dp.Use24hTime)
		if dp.FilterRoutes != nil {
			d.Display.FilterRoutes = normalizeList(*dp.FilterRoutes)
		}
	}
	if s := p.Style; s != nil {
		setBool(&d.Style.ColorByRoute, s.ColorByRoute)
		setBool(&d.Style.CardShadow, s.CardShadow)
		setBool(&d.Style.CardBorder, s.CardBorder)
		if f := s.Fonts; f != nil {
			mergeFont(&d.Style.Fonts.Title, f.Title, 10, 100)
			mergeFont(&d.Style.Fonts.Subtitle, f.Subtitle, 10, 60)
			mergeFont(&d.Style.Fonts.Text, f.Text, 10, 40)
			mergeFont(&d.Style.Fonts.Time, f.Time, 10, 60)
		}
		if c := s.Clock; c != nil {
			setString(&d.Style.Clock.FontFamily, c.FontFamily)
			if c.FontSize != nil {
				d.Style.Clock.FontSize = clampInt(*c.FontSize, 10, 60)
			}
			setString(&d.Style.Clock.FontWeight, c.FontWeight)
			setString(&d.Style.Clock.TextColor, c.TextColor)
		}
		if c := s.Colors; c != nil {
			setString(&d.Style.Colors.Text, c.Text)
			setString(&d.Style.Colors.Background, c.Background)
			setString(&d.Style.Colors.CardBackground, c.CardBackground)
			setString(&d.Style.Colors.CardBorder, c.CardBorder)
			setString(&d.Style.Colors.HighlightDeparture, c.HighlightDeparture)
			setString(&d.Style.Colors.ClockText, c.ClockText)
		}
		if e := s.CustomEmojis; e != nil {
			setString(&d.Style.CustomEmojis.Bus, e.Bus)
			setString(&d.Style.CustomEmojis.Tram, e.Tram)
			setString(&d.Style.CustomEmojis.Metro, e.Metro)
		}
	}
	if c := p.Clock; c != nil {
		setBool(&d.Clock.Show, c.Show)
		if c.Position != nil {
			d.Clock.Position = pickEnum(*c.Position, clockPositionOptions, "top-right")
		}
	}
	if z := p.TopHighlightZone; z != nil {
		setBool(&d.TopHighlightZone.Enabled, z.Enabled)
		if z.MinutesThreshold != nil {
			d.TopHighlightZone.MinutesThreshold = clampInt(*z.MinutesThreshold, 1, 30)
		}
		if z.MaxItems != nil {
			d.TopHighlightZone.MaxItems = clampInt(*z.MaxItems, 1, 10)
		}
		if z.FontSize != nil {
			d.TopHighlightZone.FontSize = clampInt(*z.FontSize, 10, 40)
		}
		setString(&d.TopHighlightZone.FontFamily, z.FontFamily)
		setString(&d.TopHighlightZone.TextColor, z.TextColor)
		setBool(&d.TopHighlightZone.ShowRouteIcon, z.ShowRouteIcon)
		setBool(&d.TopHighlightZone.ShowCountdown, z.ShowCountdown)
	}
	return d
}

func mergeFont(dst *FontSpec, p *PartialFontSpec, minSize, maxSize int) {
	if p == nil {
		return
	}
	setString(&dst.Family, p.Family)
	if p.Size != nil {
		dst.Size = clampInt(*p.Size, minSize, maxSize)
	}
	setString(&dst.Weight, p.Weight)
}

func setBool(dst *bool, p *bool) {
	if p != nil {
		*dst = *p
	}
}

func setString(dst *string, p *string) {
	if p != nil {
		*dst = *p
	}
}
