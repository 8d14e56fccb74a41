package loan

import (
	"encoding/json"
	"testing"
)

func TestParseAmount_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1000000", "1000000"},
		{" 500000 ", "500000"},
		// 2^64 does not fit in uint64, must survive intact
		{"18446744073709551616", "18446744073709551616"},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935",
			"115792089237316195423570985008687907853269984665640564039457584007913129639935"},
	}
	for _, tc := range tests {
		a, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", tc.in, err)
		}
		if a.String() != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, a.String(), tc.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "-1", "1.5", "1e6", "abc", "0x10"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) succeeded, want error", in)
		}
	}
}

func TestAmount_MarshalJSON_AsString(t *testing.T) {
	a, err := ParseAmount("18446744073709551616")
	if err != nil {
		t.Fatalf("ParseAmount() failed: %v", err)
	}

	got, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if string(got) != `"18446744073709551616"` {
		t.Fatalf("Marshal() = %s, want quoted decimal string", got)
	}
}

func TestAmount_UnmarshalJSON_AcceptsStringAndNumber(t *testing.T) {
	for _, in := range []string{`"1000000"`, `1000000`} {
		var a Amount
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		if a.String() != "1000000" {
			t.Fatalf("Unmarshal(%s) = %s, want 1000000", in, a.String())
		}
	}

	var a Amount
	if err := json.Unmarshal([]byte(`null`), &a); err == nil {
		t.Fatal("Unmarshal(null) succeeded, want error")
	}
}

func TestSumRepayments(t *testing.T) {
	repayments := []Repayment{
		{Amount: NewAmount(1000000)},
		{Amount: NewAmount(500000)},
		{Amount: nil},
	}

	total := SumRepayments(repayments)
	if total.String() != "1500000" {
		t.Fatalf("SumRepayments() = %s, want 1500000", total.String())
	}
}

func TestSumRepayments_Empty(t *testing.T) {
	total := SumRepayments(nil)
	if total.String() != "0" {
		t.Fatalf("SumRepayments(nil) = %s, want 0", total.String())
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"1500000", 6, "1.5"},
		{"1000000", 6, "1"},
		{"1", 6, "0.000001"},
		{"0", 6, "0"},
		{"123456789", 2, "1234567.89"},
	}
	for _, tc := range tests {
		a, err := ParseAmount(tc.amount)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", tc.amount, err)
		}
		if got := FormatAmount(a, tc.decimals); got != tc.want {
			t.Fatalf("FormatAmount(%s, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}

	if got := FormatAmount(nil, 6); got != "0" {
		t.Fatalf("FormatAmount(nil) = %s, want 0", got)
	}
}
