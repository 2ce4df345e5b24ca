package cli

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"stocklens/internal/analysis"
)

func testOutput(colorEnabled bool) (*Output, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Output{writer: buf, colorEnabled: colorEnabled}, buf
}

func TestPositionText(t *testing.T) {
	tests := []struct {
		position analysis.Position
		color    string
	}{
		{analysis.Above, ColorGreen},
		{analysis.Below, ColorRed},
		{analysis.Equal, ColorYellow},
	}

	colored, _ := testOutput(true)
	plain, _ := testOutput(false)

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			got := colored.PositionText(tt.position)
			want := tt.color + string(tt.position) + ColorReset
			if got != want {
				t.Errorf("PositionText(%s) = %q, want %q", tt.position, got, want)
			}

			if got := plain.PositionText(tt.position); got != string(tt.position) {
				t.Errorf("PositionText(%s) without color = %q, want %q",
					tt.position, got, string(tt.position))
			}
		})
	}
}

func TestSourceTag(t *testing.T) {
	tests := []struct {
		source string
		color  string
	}{
		{"YAHOO", ColorCyan},
		{"CACHE", ColorBlue},
		{"CALC", ColorYellow},
		{"OTHER", ColorDim},
	}

	colored, _ := testOutput(true)
	plain, _ := testOutput(false)

	for _, tt := range tests {
		got := colored.SourceTag(tt.source)
		want := "[" + tt.color + tt.source + ColorReset + "]"
		if got != want {
			t.Errorf("SourceTag(%s) = %q, want %q", tt.source, got, want)
		}

		if got := plain.SourceTag(tt.source); got != "["+tt.source+"]" {
			t.Errorf("SourceTag(%s) without color = %q", tt.source, got)
		}
	}
}

func TestChangeColor(t *testing.T) {
	o, _ := testOutput(true)

	if got := o.ChangeColor(1.5); got != ColorGreen {
		t.Errorf("ChangeColor(1.5) = %q, want green", got)
	}
	if got := o.ChangeColor(-0.2); got != ColorRed {
		t.Errorf("ChangeColor(-0.2) = %q, want red", got)
	}
	if got := o.ChangeColor(0); got != ColorReset {
		t.Errorf("ChangeColor(0) = %q, want reset", got)
	}
}

func TestStripANSI(t *testing.T) {
	in := ColorBold + ColorGreen + "Above" + ColorReset
	if got := stripANSI(in); got != "Above" {
		t.Errorf("stripANSI(%q) = %q, want %q", in, got, "Above")
	}
}

func TestTableAlignsColoredCells(t *testing.T) {
	o, buf := testOutput(true)

	table := NewTable(o, "Metric", "Value")
	table.AddRow("50-Day MA", o.Green("Above"))
	table.AddRow("200-Day MA", o.Red("Below"))
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4 (header, separator, two rows)", len(lines))
	}

	// Column width ignores escape codes, so every row has the same visible width.
	width := utf8.RuneCountInString(stripANSI(lines[0]))
	for i, line := range lines {
		if got := utf8.RuneCountInString(stripANSI(line)); got != width {
			t.Errorf("line %d visible width = %d, want %d", i, got, width)
		}
	}
}
