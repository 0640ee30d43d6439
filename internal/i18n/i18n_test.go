package i18n

import "testing"

func TestGet(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		key  string
		lang string
		want string
	}{
		{"english passes through", "Saved.", "en", "Saved."},
		{"empty language passes through", "Saved.", "", "Saved."},
		{"ukrainian is translated", "Saved.", "uk", "Збережено."},
		{"unknown key falls back", "No such key.", "uk", "No such key."},
		{"unknown language falls back", "Saved.", "xx", "Saved."},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Get(tt.key, tt.lang); got != tt.want {
				t.Fatalf("Get(%q, %q) = %q, want %q", tt.key, tt.lang, got, tt.want)
			}
		})
	}
}
