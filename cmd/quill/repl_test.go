package main

import "testing"

func TestBraceBalance(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{`{`, 1},
		{`}`, -1},
		{`{ }`, 0},
		{`if (x) {`, 1},
		{`while (true) { {`, 2},
		{`print "{";`, 0},
		{`print "}{}{";`, 0},
		{`print "\"{";`, 0},
		{`var s = "a}b";`, 0},
		{`// {`, 0},
		{`if (x) { // }`, 1},
		{`while (true) { print "}";`, 1},
	}

	for _, tt := range tests {
		if got := braceBalance(tt.line); got != tt.want {
			t.Errorf("braceBalance(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}
