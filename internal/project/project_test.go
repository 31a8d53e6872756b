package project

import "testing"

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/papers/Attention Is All You Need.pdf", "attention-is-all-you-need"},
		{"deep_learning-survey.v2.pdf", "deep-learning-survey-v2"},
		{"UPPER CASE.md", "upper-case"},
		{"weird!!chars##.pdf", "weirdchars"},
		{"///", "untitled"},
		{"", "untitled"},
		{"...", "untitled"},
	}
	for _, tc := range tests {
		if got := DeriveKey(tc.input); got != tc.want {
			t.Fatalf("DeriveKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDeriveKeyIsStable(t *testing.T) {
	first := DeriveKey("/a/b/My Paper.pdf")
	second := DeriveKey("/a/b/My Paper.pdf")
	if first != second {
		t.Fatalf("key not stable: %q vs %q", first, second)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/papers/attention-is-all-you-need.pdf", "Attention Is All You Need"},
		{"deep_learning survey.pdf", "Deep Learning Survey"},
		{"", "Untitled Presentation"},
		{"!!!.pdf", "Untitled Presentation"},
	}
	for _, tc := range tests {
		if got := DeriveTitle(tc.input); got != tc.want {
			t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
