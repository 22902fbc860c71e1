package analyze

import "testing"

func TestOutline_CollectsHeadingsInOrder(t *testing.T) {
	input := `# Guide

intro text

## Setup

steps

### Details with *emphasis*

body
`
	got := Outline(input)
	want := []Heading{
		{Level: 1, Text: "Guide"},
		{Level: 2, Text: "Setup"},
		{Level: 3, Text: "Details with emphasis"},
	}
	if len(got) != len(want) {
		t.Fatalf("outline: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outline[%d]: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOutline_NoHeadings(t *testing.T) {
	if got := Outline("plain paragraph\n\nanother\n"); len(got) != 0 {
		t.Fatalf("expected empty outline, got %v", got)
	}
}
