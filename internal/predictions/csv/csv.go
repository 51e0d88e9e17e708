// Package csv stages prediction rows from an uploaded comma-delimited
// file. Parsing is pure and all-or-nothing: one bad row rejects the whole
// upload so the operator fixes the file instead of half-importing it.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
)

var requiredHeaders = []string{"Team", "Opponent", "Div", "Date", "Predicted", "Prob_Max"}

// leagueNames maps football-data division codes onto display names.
// Unknown codes fall back to the raw code.
var leagueNames = map[string]string{
	"E0":  "Eng Premier League",
	"E1":  "Eng Championship",
	"E2":  "Eng League 1",
	"E3":  "Eng League 2",
	"EC":  "Eng Conference",
	"SC0": "Sct Premier League",
	"SC1": "Sct Division 1",
	"SC2": "Sct Division 2",
	"SC3": "Sct Division 3",
	"D1":  "Bundesliga",
	"D2":  "Bundesliga 2",
	"I1":  "Serie A",
	"I2":  "Serie B",
	"SP1": "La Liga",
	"SP2": "La Liga Segunda",
	"F1":  "Le Championnat",
	"F2":  "Fr Division 2",
	"N1":  "Eredivisie",
	"B1":  "Bel Jupiler League",
	"P1":  "Por Liga I",
	"T1":  "Tur Futbol Ligi 1",
	"G1":  "Greek Ethniki Katigoria",
}

var dateFormats = []string{"2006-01-02", "02/01/2006", "02/01/06"}

// StagedRow is one validated prediction awaiting operator review.
type StagedRow struct {
	MatchDate time.Time            `json:"match_date"`
	League    string               `json:"league"`
	Match     string               `json:"match"`
	Tip       string               `json:"tip"`
	Odds      decimal.Decimal      `json:"odds"`
	ProbMax   decimal.Decimal      `json:"prob_max"`
	Type      enums.PredictionType `json:"type"`
}

// ParseStaged validates the whole file and returns every row staged, or a
// validation error naming the first offending line.
func ParseStaged(input string) ([]StagedRow, error) {
	reader := stdcsv.NewReader(strings.NewReader(input))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed CSV input")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "CSV input is empty")
	}

	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.TrimSpace(header)
	}

	var missing []string
	for _, required := range requiredHeaders {
		if !contains(headers, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid CSV headers, missing required headers: %s", strings.Join(missing, ", ")))
	}
	hasOddsHeader := contains(headers, "Odds")

	rows := make([]StagedRow, 0, len(records)-1)
	for index, record := range records[1:] {
		lineNumber := index + 2

		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				fields[header] = strings.TrimSpace(record[i])
			}
		}

		for _, required := range requiredHeaders {
			if fields[required] == "" {
				return nil, rowError(lineNumber, fmt.Sprintf("missing required value for %q", required))
			}
		}

		matchDate, err := parseDate(fields["Date"])
		if err != nil {
			return nil, rowError(lineNumber, "invalid Date value, use a format like YYYY-MM-DD")
		}

		probMax, err := decimal.NewFromString(fields["Prob_Max"])
		if err != nil || !probMax.IsPositive() || probMax.GreaterThan(decimal.NewFromInt(1)) {
			return nil, rowError(lineNumber, "Prob_Max must be a number greater than 0 and up to 1")
		}

		var odds decimal.Decimal
		if hasOddsHeader && fields["Odds"] != "" {
			odds, err = decimal.NewFromString(fields["Odds"])
			if err != nil || !odds.IsPositive() {
				return nil, rowError(lineNumber, "Odds must be a positive number")
			}
		} else {
			odds = decimal.NewFromInt(1).Div(probMax)
		}

		kind := enums.PredictionTypeSmall
		if strings.EqualFold(fields["type"], string(enums.PredictionTypeBig)) {
			kind = enums.PredictionTypeBig
		}

		league := fields["Div"]
		if name, ok := leagueNames[league]; ok {
			league = name
		}

		rows = append(rows, StagedRow{
			MatchDate: matchDate,
			League:    league,
			Match:     fmt.Sprintf("%s vs %s", fields["Team"], fields["Opponent"]),
			Tip:       fields["Predicted"],
			Odds:      odds,
			ProbMax:   probMax,
			Type:      kind,
		})
	}
	return rows, nil
}

func parseDate(value string) (time.Time, error) {
	for _, format := range dateFormats {
		if parsed, err := time.ParseInLocation(format, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func rowError(line int, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s on line %d", message, line))
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
