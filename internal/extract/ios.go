package extract

import (
	"regexp"
	"strings"

	"nbrsnap/internal/domain"
)

// headerMarker ends the column header line of "show cdp neighbor"
var headerMarker = regexp.MustCompile(`Port ID[ \t]*(\n|$)`)

// cdpTrailer is printed by newer IOS releases after the table
var cdpTrailer = regexp.MustCompile(`(?m)^[ \t]*Total cdp entries displayed.*$`)

// cdpRow matches one logical table row. Only the gap after the device id may
// cross a line break, for ids that overflow their column; every later column
// stays on one line so a short row cannot absorb the row below it.
// Capability groups are tried longest first so the platform column is never
// swallowed. Trailing column padding is not part of the port id.
//
//	1 device id  2 local interface  3 holdtime  4 capabilities (5-9 alternatives)
//	10 platform  11 port id
var cdpRow = regexp.MustCompile(
	`(?m)(\S+)\s+(\S+ \S+)[ \t]+(\S+)[ \t]+` +
		`((\S \S \S \S \S)|(\S \S \S \S)|(\S \S \S)|(\S \S)|(\S))` +
		`[ \t]+(\S+)[ \t]+(.*?)[ \t]*$`)

const (
	groupDeviceID       = 1
	groupLocalInterface = 2
	groupPortID         = 11
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "")

// IOS extracts CDP neighbors from "show cdp neighbor" CLI output.
//
// The table body starts after the header line ending in "Port ID"; output
// without that header is a parse failure. Rows that do not fit the grammar
// are dropped without failing the device.
func IOS(raw *domain.RawResponse) ([]domain.NeighborRecord, error) {
	if raw == nil {
		return nil, domain.NewParseError("no response")
	}
	body, ok := tableBody(raw.Text)
	if !ok {
		return nil, domain.NewParseError("neighbor table header not found")
	}
	return parseCDPRows(body), nil
}

// tableBody returns everything after the first header marker
func tableBody(text string) (string, bool) {
	text = lineEndings.Replace(text)
	loc := headerMarker.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[1]:], true
}

func parseCDPRows(body string) []domain.NeighborRecord {
	body = cdpTrailer.ReplaceAllString(body, "")

	matches := cdpRow.FindAllStringSubmatch(body, -1)
	records := make([]domain.NeighborRecord, 0, len(matches))
	for _, m := range matches {
		rec := domain.NeighborRecord{
			NeighborInterface: m[groupPortID],
			LocalInterface:    m[groupLocalInterface],
			Neighbor:          m[groupDeviceID],
		}
		if !rec.Complete() {
			continue
		}
		records = append(records, rec)
	}
	return records
}
