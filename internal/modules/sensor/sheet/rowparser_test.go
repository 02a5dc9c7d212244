package sheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain fields",
			in:   "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted field with comma",
			in:   `a,"b,c",d`,
			want: []string{"a", "b,c", "d"},
		},
		{
			name: "escaped quote inside quoted field",
			in:   `"a""b",c`,
			want: []string{`a"b`, "c"},
		},
		{
			name: "every field quoted",
			in:   `"2024-01-01","10:00:00","21.5","48.0","lab"`,
			want: []string{"2024-01-01", "10:00:00", "21.5", "48.0", "lab"},
		},
		{
			name: "empty fields are kept",
			in:   "a,,c,",
			want: []string{"a", "", "c", ""},
		},
		{
			name: "single field",
			in:   "only",
			want: []string{"only"},
		},
		{
			name: "empty line yields one empty field",
			in:   "",
			want: []string{""},
		},
		{
			name: "unbalanced quote keeps the rest as one field",
			in:   `val"ue,x`,
			want: []string{"value,x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRow(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRow(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "unix newlines",
			in:   "h1,h2\na,b\nc,d\n",
			want: []string{"h1,h2", "a,b", "c,d"},
		},
		{
			name: "windows newlines",
			in:   "h1,h2\r\na,b\r\n",
			want: []string{"h1,h2", "a,b"},
		},
		{
			name: "blank lines dropped",
			in:   "h1,h2\n\n  \na,b\n",
			want: []string{"h1,h2", "a,b"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitLines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
