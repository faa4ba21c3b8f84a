package parser

import (
	"fmt"
	"testing"
	"time"
)

func TestParseDateValue_Serial(t *testing.T) {
	t.Parallel()

	// 序列号 25569 对应 1970-01-01，任意有效序列号按天粒度可往返
	serials := []float64{25570, 44927, 45000, 45808.5, 46000.75}
	for _, serial := range serials {
		got, ok := ParseDateValue(fmt.Sprintf("%v", serial))
		if !ok {
			t.Fatalf("serial %v: parse failed", serial)
		}
		days := int64(got.Sub(time.Unix(0, 0).UTC()).Hours() / 24)
		want := int64(serial) - 25569
		if days != want {
			t.Fatalf("serial %v: got %v (%d days after epoch), want %d days", serial, got, days, want)
		}
	}
}

func TestParseDateValue_SerialFraction(t *testing.T) {
	t.Parallel()

	// 0.5 的小数部分是正午
	got, ok := ParseDateValue("45808.5")
	if !ok {
		t.Fatalf("parse failed")
	}
	if got.Hour() != 12 || got.Minute() != 0 {
		t.Fatalf("unexpected time of day: %v", got)
	}
}

func TestParseDateValue_StringFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"2025-05-28", "2025-05-28"},
		{"05/28/2025", "2025-05-28"},
		{"5/8/2025", "2025-05-08"},
		{"05-28-2025", "2025-05-28"},
		{"05/28/25", "2025-05-28"},
		{"2025-05-28T10:30:00Z", "2025-05-28"},
	}

	for _, tt := range tests {
		got, ok := ParseDateValue(tt.input)
		if !ok {
			t.Fatalf("%q: parse failed", tt.input)
		}
		if FormatDate(got) != tt.want {
			t.Fatalf("%q: got %s, want %s", tt.input, FormatDate(got), tt.want)
		}
	}
}

func TestParseDateValue_Invalid(t *testing.T) {
	t.Parallel()

	invalid := []string{"", "   ", "not a date", "13/45/2025", "99-99-9999"}
	for _, input := range invalid {
		if got, ok := ParseDateValue(input); ok {
			t.Fatalf("%q: expected failure, got %v", input, got)
		}
	}
}

func TestParseDateValue_EpochAnchorRejected(t *testing.T) {
	t.Parallel()

	// 恰为纪元锚点的结果与解析失败无法区分，必须按无效处理
	inputs := []string{"1970-01-01", "01/01/1970", "25569"}
	for _, input := range inputs {
		if got, ok := ParseDateValue(input); ok {
			t.Fatalf("%q: epoch anchor must be invalid, got %v", input, got)
		}
	}
}

func TestIsEpochAnchor(t *testing.T) {
	t.Parallel()

	if !IsEpochAnchor(time.Date(1970, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("1970-01-01 should be epoch anchor")
	}
	if IsEpochAnchor(time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("1970-01-02 should not be epoch anchor")
	}
}
