package render

import "testing"

func TestRender(t *testing.T) {
	cases := []struct {
		name   string
		tpl    string
		fields map[string]any
		want   string
	}{
		{
			name:   "integral float drops decimal",
			tpl:    "Hello {{name}}, price {{cheapest_price}}",
			fields: map[string]any{"name": "Ann", "cheapest_price": 450.0},
			want:   "Hello Ann, price 450",
		},
		{
			name:   "fractional float keeps decimals",
			tpl:    "{{ price }}",
			fields: map[string]any{"price": 450.5},
			want:   "450.5",
		},
		{
			name:   "unknown placeholder renders empty",
			tpl:    "Hi {{ nickname }}!",
			fields: map[string]any{"name": "Ann"},
			want:   "Hi !",
		},
		{
			name:   "whitespace tolerant",
			tpl:    "{{  origin  }} to {{destination}}",
			fields: map[string]any{"origin": "NYC", "destination": "LON"},
			want:   "NYC to LON",
		},
		{
			name:   "malformed delimiters stay verbatim",
			tpl:    "{{ name } and {name}} and {{na me}}",
			fields: map[string]any{"name": "Ann"},
			want:   "{{ name } and {name}} and {{na me}}",
		},
		{
			name:   "integer and nil values",
			tpl:    "{{days_window}}d {{missing}}",
			fields: map[string]any{"days_window": 30, "missing": nil},
			want:   "30d ",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Render(c.tpl, c.fields); got != c.want {
				t.Fatalf("Render(%q) = %q, want %q", c.tpl, got, c.want)
			}
		})
	}
}
