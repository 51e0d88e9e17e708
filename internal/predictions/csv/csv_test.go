package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
)

func TestParseStagedDerivesOddsFromProbMax(t *testing.T) {
	input := "Team,Opponent,Div,Date,Predicted,Prob_Max\n" +
		"A,B,E0,2024-03-05,A Win,0.65\n"

	rows, err := ParseStaged(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Match != "A vs B" {
		t.Fatalf("match = %q", row.Match)
	}
	if row.League != "Eng Premier League" {
		t.Fatalf("league = %q", row.League)
	}
	if row.Tip != "A Win" {
		t.Fatalf("tip = %q", row.Tip)
	}
	if row.Type != enums.PredictionTypeSmall {
		t.Fatalf("type = %q", row.Type)
	}
	if !row.MatchDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %s", row.MatchDate)
	}

	want := decimal.NewFromInt(1).Div(decimal.RequireFromString("0.65"))
	if !row.Odds.Equal(want) {
		t.Fatalf("odds = %s, want %s", row.Odds, want)
	}
	if row.Odds.StringFixed(2) != "1.54" {
		t.Fatalf("display odds = %s, want 1.54", row.Odds.StringFixed(2))
	}
}

func TestParseStagedExplicitOddsAndBigType(t *testing.T) {
	input := "Team,Opponent,Div,Date,Predicted,Prob_Max,Odds,type\n" +
		"C,D,XYZ,05/04/2024,Over 2.5,0.5,2.10,BIG\n"

	rows, err := ParseStaged(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := rows[0]
	if !row.Odds.Equal(decimal.RequireFromString("2.10")) {
		t.Fatalf("odds = %s", row.Odds)
	}
	if row.Type != enums.PredictionTypeBig {
		t.Fatalf("type should be big for case-insensitive match, got %q", row.Type)
	}
	if row.League != "XYZ" {
		t.Fatalf("unmapped division should fall back to the raw code, got %q", row.League)
	}
	if !row.MatchDate.Equal(time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dd/mm/yyyy date parsed as %s", row.MatchDate)
	}
}

func TestParseStagedNamesAllMissingHeaders(t *testing.T) {
	input := "Team,Div,Date\nA,E0,2024-03-05\n"

	_, err := ParseStaged(input)
	if err == nil {
		t.Fatal("expected missing header error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, name := range []string{"Opponent", "Predicted", "Prob_Max"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name missing header %s: %v", name, err)
		}
	}
}

func TestParseStagedBadRowAbortsWholeFile(t *testing.T) {
	input := "Team,Opponent,Div,Date,Predicted,Prob_Max\n" +
		"A,B,E0,2024-03-05,A Win,0.65\n" +
		"C,D,E1,not-a-date,C Win,0.5\n"

	_, err := ParseStaged(input)
	if err == nil {
		t.Fatal("expected date error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error should point at line 3: %v", err)
	}
}

func TestParseStagedProbMaxBounds(t *testing.T) {
	for _, bad := range []string{"0", "-0.2", "1.5", "abc"} {
		input := "Team,Opponent,Div,Date,Predicted,Prob_Max\n" +
			"A,B,E0,2024-03-05,A Win," + bad + "\n"
		if _, err := ParseStaged(input); err == nil {
			t.Errorf("Prob_Max %q should be rejected", bad)
		}
	}

	input := "Team,Opponent,Div,Date,Predicted,Prob_Max\n" +
		"A,B,E0,2024-03-05,A Win,1\n"
	rows, err := ParseStaged(input)
	if err != nil {
		t.Fatalf("Prob_Max of exactly 1 is valid: %v", err)
	}
	if !rows[0].Odds.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("odds = %s, want 1", rows[0].Odds)
	}
}

func TestParseStagedRejectsNonPositiveOdds(t *testing.T) {
	input := "Team,Opponent,Div,Date,Predicted,Prob_Max,Odds\n" +
		"A,B,E0,2024-03-05,A Win,0.65,0\n"
	if _, err := ParseStaged(input); err == nil {
		t.Fatal("zero odds should be rejected")
	}
}

func TestParseStagedMissingValue(t *testing.T) {
	input := "Team,Opponent,Div,Date,Predicted,Prob_Max\n" +
		"A,,E0,2024-03-05,A Win,0.65\n"
	_, err := ParseStaged(input)
	if err == nil || !strings.Contains(err.Error(), "Opponent") {
		t.Fatalf("expected missing Opponent error, got %v", err)
	}
}
