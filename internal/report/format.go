// internal/report/format.go
package report

import (
	"fmt"
	"strings"

	"property-report-bot/internal/models"
	"property-report-bot/internal/ranking"
)

const descriptionLimit = 200

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// FormatProperty returns the detailed block for one property. Optional
// location and URL lines are appended only when present.
func FormatProperty(p models.Record) string {
	var extra []string
	if loc := p.Location(); loc != "" {
		extra = append(extra, fmt.Sprintf("Location: %s", loc))
	}
	if u := p.URL(); u != "" {
		extra = append(extra, fmt.Sprintf("URL: %s", u))
	}
	extras := ""
	if len(extra) > 0 {
		extras = "\n    " + strings.Join(extra, "\n    ")
	}
	return fmt.Sprintf("🏠 %s (id: %s)\n   ⭐ Airbnb: %s\n   ⭐ Booking: %s%s\n",
		p.Name(), p.ID(), p.AirbnbDisplay(), p.BookingDisplay(), extras)
}

// FormatPropertyBasic returns the single listing line for one property.
func FormatPropertyBasic(p models.Record) string {
	locStr := ""
	if loc := p.Location(); loc != "" {
		locStr = fmt.Sprintf(" - %s", loc)
	}
	return fmt.Sprintf("🏠 [%s] %s%s", p.ID(), p.Name(), locStr)
}

// FormatRankedProperty formats one top-list entry. Ranks 1-3 get medal
// glyphs, the rest a numeric marker; the composite score prints with two
// decimals.
func FormatRankedProperty(rank int, rp ranking.RankedProperty) string {
	marker, ok := medals[rank]
	if !ok {
		marker = fmt.Sprintf("%d.", rank)
	}
	p := rp.Property
	return fmt.Sprintf("%s %s (id: %s)\n   ⭐ Avg: %.2f | Airbnb: %s | Booking: %s",
		marker, p.Name(), p.ID(), rp.Score, p.AirbnbDisplay(), p.BookingDisplay())
}

// FormatComplaint formats one complaint block. Severity and date lines are
// optional; the description is truncated to 200 runes with an ellipsis.
func FormatComplaint(c models.Record) string {
	lines := []string{
		fmt.Sprintf("📋 Complaint #%s: %s", c.StringField("N/A", "id"), c.ComplaintTitle()),
		fmt.Sprintf("   Status: %s", c.ComplaintStatus()),
	}
	if severity := c.ComplaintSeverity(); severity != "" {
		lines = append(lines, fmt.Sprintf("   Severity: %s", severity))
	}
	if date := c.ComplaintDate(); date != "" {
		lines = append(lines, fmt.Sprintf("   Date: %s", date))
	}
	lines = append(lines, fmt.Sprintf("   Description: %s",
		models.Truncate(c.ComplaintDescription(), descriptionLimit)))
	return strings.Join(lines, "\n")
}

// RatingsReport builds the full multi-property ratings report.
func RatingsReport(properties []models.Record) string {
	lines := []string{"🏡 Property Ratings\n"}
	for _, p := range properties {
		lines = append(lines, FormatProperty(p))
	}
	return strings.Join(lines, "\n")
}

// TopReport builds the ranked summary. The headline count comes from the
// length of the ranked slice, never from the requested limit.
func TopReport(ranked []ranking.RankedProperty) string {
	lines := []string{fmt.Sprintf("🏆 Top %d Best Rated Properties\n", len(ranked))}
	for i, rp := range ranked {
		lines = append(lines, FormatRankedProperty(i+1, rp))
	}
	return strings.Join(lines, "\n")
}

// PropertiesReport builds the basic listing with usage hints.
func PropertiesReport(properties []models.Record) string {
	lines := []string{"🏠 Properties List\n"}
	for _, p := range properties {
		lines = append(lines, FormatPropertyBasic(p))
	}
	lines = append(lines,
		"\n💡 Use /property <id> for details",
		"💡 Use /complaints <id> to see complaints",
	)
	return strings.Join(lines, "\n")
}

// ComplaintsReport builds the complaint listing for one property.
func ComplaintsReport(propertyName, propertyID string, complaints []models.Record) string {
	lines := []string{
		fmt.Sprintf("📋 Complaints for %s (id: %s)\n", propertyName, propertyID),
		fmt.Sprintf("Total: %d complaint(s)\n", len(complaints)),
	}
	for _, c := range complaints {
		lines = append(lines, FormatComplaint(c), "")
	}
	return strings.Join(lines, "\n")
}
