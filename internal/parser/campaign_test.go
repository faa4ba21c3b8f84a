package parser

import "testing"

func TestResolveCampaignCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"ITL - 7781", "7781", true},
		{"itl7781", "7781", true},
		{"ITL-7781 Spring Push", "7781", true},
		{"Campaign ITL 123", "123", true},
		{"Campaign X", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveCampaignCode(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ResolveCampaignCode(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveStrictCampaignCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"ITL - 7781", "7781", true},
		{"itl7781", "7781", true},
		{"ITL-123", "", false}, // 严格版要求 4 位
		{"Campaign X", "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveStrictCampaignCode(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ResolveStrictCampaignCode(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveCampaignCode_MultipleCandidates(t *testing.T) {
	t.Parallel()

	// 首个命中的候选字段生效
	got, ok := ResolveCampaignCode("no code here", "ITL-9001", "ITL-9002")
	if !ok || got != "9001" {
		t.Fatalf("got (%q, %v), want (9001, true)", got, ok)
	}
}
