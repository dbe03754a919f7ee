package localization

import (
	"testing"
)

func TestGet(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	tests := []struct {
		name   string
		lang   string
		key    string
		params map[string]interface{}
		want   string
	}{
		{
			name:   "placeholders filled",
			lang:   "en",
			key:    "cutoffs.errors.invalid_range",
			params: map[string]interface{}{"start": 1000, "end": 500},
			want:   "Price range start must be below its end: [1000 – 500].",
		},
		{
			name: "unknown language falls back to english",
			lang: "de",
			key:  "cutoffs.list.fee_empty",
			want: "No fee rules yet.",
		},
		{
			name: "unknown key returned as is",
			lang: "en",
			key:  "cutoffs.nope",
			want: "cutoffs.nope",
		},
		{
			name: "section key is not a message",
			lang: "en",
			key:  "cutoffs.errors",
			want: "cutoffs.errors",
		},
		{
			name: "russian",
			lang: "ru",
			key:  "cutoffs.list.fee_empty",
			want: "Правил по цене пока нет.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Get(tt.lang, tt.key, tt.params); got != tt.want {
				t.Errorf("Get(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}
