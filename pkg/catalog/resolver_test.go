package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name   string
		record RemoteRecord
		want   string
	}{
		{
			name:   "chinese name wins over generic name",
			record: RemoteRecord{ChineseName: "A", Name: "B"},
			want:   "A",
		},
		{
			name: "chinese name wins over locales",
			record: RemoteRecord{
				ChineseName: "高德地图",
				Locales:     map[string]Locale{"zh": {Name: "别名"}},
			},
			want: "高德地图",
		},
		{
			name:   "zh locale before en locale",
			record: RemoteRecord{Locales: map[string]Locale{"zh": {Name: "地图"}, "en": {Name: "Maps"}}},
			want:   "地图",
		},
		{
			name:   "en locale when zh absent",
			record: RemoteRecord{Locales: map[string]Locale{"en": {Name: "C"}}},
			want:   "C",
		},
		{
			name:   "empty zh locale falls through to en",
			record: RemoteRecord{Locales: map[string]Locale{"zh": {Name: "  "}, "en": {Name: "Maps"}}},
			want:   "Maps",
		},
		{
			name:   "generic name when no localized names",
			record: RemoteRecord{Name: "fetch"},
			want:   "fetch",
		},
		{
			name:   "id substitution strips at-sign and replaces slashes",
			record: RemoteRecord{ID: "@scope/pkg"},
			want:   "scope-pkg",
		},
		{
			name:   "whitespace-only fields are treated as absent",
			record: RemoteRecord{ChineseName: " ", Name: "\t", ID: "@amap/amap-maps"},
			want:   "amap-amap-maps",
		},
		{
			name:   "unnamed record yields empty string",
			record: RemoteRecord{},
			want:   "",
		},
		{
			name:   "unsupported locale is ignored",
			record: RemoteRecord{Locales: map[string]Locale{"fr": {Name: "Cartes"}}, ID: "x"},
			want:   "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveName(tt.record))
		})
	}
}
