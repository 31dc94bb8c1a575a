package core

import (
	"errors"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseCount Tests
// ----------------------------------------------------------------------------

func TestParseCount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue int64
		wantErr   error
	}{
		// Valid: plain integers
		{name: "positive integer", input: "1234567", wantValid: true, wantValue: 1234567},
		{name: "zero", input: "0", wantValid: true, wantValue: 0},

		// Valid: spreadsheet artifacts
		{name: "thousands separators", input: "1,234,567", wantValid: true, wantValue: 1234567},
		{name: "spaces as separators", input: "1 234 567", wantValid: true, wantValue: 1234567},
		{name: "non-breaking spaces", input: "1 234", wantValid: true, wantValue: 1234},
		{name: "formula prefix", input: `="42"`, wantValid: true, wantValue: 42},
		{name: "integral float", input: "1234567.0", wantValid: true, wantValue: 1234567},
		{name: "scientific notation", input: "1.4e9", wantValid: true, wantValue: 1400000000},

		// Null: empty cells
		{name: "empty string", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},

		// Invalid
		{name: "negative", input: "-5", wantErr: errNegative},
		{name: "fractional", input: "12.5", wantErr: errNotIntegral},
		{name: "text", input: "n/a", wantErr: errNotNumber},
		{name: "double dot", input: "1.2.3", wantErr: errNotNumber},
		{name: "decimal comma", input: "47,5", wantErr: errNotNumber},
		{name: "misplaced separator", input: "12,34,567", wantErr: errNotNumber},

		// Range
		{name: "largest count", input: "1000000000000", wantValid: true, wantValue: 1_000_000_000_000},
		{name: "above largest count", input: "1000000000001", wantErr: errOutOfRange},
		{name: "two to the 63", input: "9223372036854775808", wantErr: errOutOfRange},
		{name: "huge float", input: "1e300", wantErr: errOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseCount(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("ParseCount(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int64 != tt.wantValue {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got.Int64, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseRate Tests
// ----------------------------------------------------------------------------

func TestParseRate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
		wantErr   error
	}{
		{name: "decimal", input: "72.5", wantValid: true, wantValue: 72.5},
		{name: "leading decimal point", input: ".5", wantValid: true, wantValue: 0.5},
		{name: "integer", input: "80", wantValid: true, wantValue: 80},
		{name: "quoted", input: `"3.25"`, wantValid: true, wantValue: 3.25},
		{name: "empty", input: "", wantValid: false},
		{name: "negative", input: "-0.1", wantErr: errNegative},
		{name: "text", input: "unknown", wantErr: errNotNumber},
		{name: "infinity", input: "1e400", wantErr: errNotNumber},
		{name: "grouped thousands", input: "1,234.5", wantValid: true, wantValue: 1234.5},
		{name: "decimal comma", input: "72,5", wantErr: errNotNumber},
		{name: "grouped thousands with fraction", input: "72,500.1", wantValid: true, wantValue: 72500.1},
		{name: "trailing comma", input: "72,", wantErr: errNotNumber},
		{name: "leading comma", input: ",5", wantErr: errNotNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRate(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRate(%q) unexpected error: %v", tt.input, err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("ParseRate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Float64 != tt.wantValue {
				t.Errorf("ParseRate(%q) = %v, want %v", tt.input, got.Float64, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantValue string
	}{
		{"España", true, "España"},
		{"  Perú  ", true, "Perú"},
		{"", false, ""},
		{"\t", false, ""},
	}

	for _, tt := range tests {
		got := ToPgText(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.wantValue {
			t.Errorf("ToPgText(%q) = {%q, %v}, want {%q, %v}",
				tt.input, got.String, got.Valid, tt.wantValue, tt.wantValid)
		}
	}
}

// ----------------------------------------------------------------------------
// CleanCell / Header Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Spain ", "Spain"},
		{`="ESP"`, "ESP"},
		{"=42", "42"},
		{`"Chile"`, "Chile"},
		{"'Peru'", "Peru"},
		{"Pai\u0301s", "País"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" Country Code", "COUNTRY", "continent", "Country"})

	if got := idx["country code"]; got != 0 {
		t.Errorf("idx[country code] = %d, want 0", got)
	}
	if got := idx["country"]; got != 1 {
		t.Errorf("idx[country] = %d, want 1 (first occurrence)", got)
	}
	if got := idx["continent"]; got != 2 {
		t.Errorf("idx[continent] = %d, want 2", got)
	}
}

func TestBlankRow(t *testing.T) {
	if !blankRow([]string{"", "  ", "\t"}) {
		t.Error("blankRow of empty cells = false, want true")
	}
	if !blankRow(nil) {
		t.Error("blankRow(nil) = false, want true")
	}
	if blankRow([]string{"", "x"}) {
		t.Error("blankRow with a value = true, want false")
	}
}
