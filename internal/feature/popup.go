package feature

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"puzzled_pint_map/internal/models"

	"github.com/samber/lo"
)

const mapSearchURL = "https://www.google.com/maps/search/?api=1&query="

// Popup builds the popup markup for a location. Sections whose fields are
// absent are left out; venue and address lines only appear for in-person
// locations.
func Popup(l models.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(l.Name))

	if tr := TimeRange(l.StartTime, l.StopTime); tr != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(tr))
	}

	if l.InPerson() {
		if l.Bar != "" {
			b.WriteString("<p>")
			b.WriteString(link(l.BarURL, l.Bar))
			b.WriteString("</p>")
		}
		fmt.Fprintf(&b, "<p>%s</p>", link(MapSearchURL(l.Address), l.Address))
	}

	if l.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(l.Notes))
	}
	return b.String()
}

// MapSearchURL links an address to an external map search.
func MapSearchURL(address string) string {
	return mapSearchURL + url.QueryEscape(address)
}

// link renders text as an anchor, or as plain text when href is empty.
func link(href, text string) string {
	if href == "" {
		return html.EscapeString(text)
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(href), html.EscapeString(text))
}

// CityPopup builds the popup markup for a city marker.
func CityPopup(c models.City) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>", link(c.URL, c.Name))
	fmt.Fprintf(&b, "<p>Status: %s</p>", html.EscapeString(string(c.Status)))
	if len(c.EventIDs) > 0 {
		fmt.Fprintf(&b, "<p>In-person events: %s</p>", joinIDs(c.EventIDs))
	}
	if len(c.RemoteEventIDs) > 0 {
		fmt.Fprintf(&b, "<p>Remote events: %s</p>", joinIDs(c.RemoteEventIDs))
	}
	return b.String()
}

func joinIDs(ids []int) string {
	return strings.Join(lo.Map(ids, func(id int, _ int) string {
		return strconv.Itoa(id)
	}), ", ")
}
