package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/types"
)

func TestNewLocaleRule(t *testing.T) {
	rule, err := NewLocaleRule("fr-CA")
	require.NoError(t, err)
	assert.True(t, rule.IsHome(types.MediaItem{OriginalLanguage: "fr", OriginCountry: []string{"CA", "FR"}}))
	assert.False(t, rule.IsHome(types.MediaItem{OriginalLanguage: "fr", OriginCountry: []string{"FR"}}))

	_, err = NewLocaleRule("en")
	assert.Error(t, err, "a bare language has no region")

	_, err = NewLocaleRule("not a tag")
	assert.Error(t, err)
}

func TestLocaleRuleInternational(t *testing.T) {
	tests := []struct {
		name string
		item types.MediaItem
		want bool
	}{
		{"japanese", types.MediaItem{OriginalLanguage: "ja", OriginCountry: []string{"JP"}}, true},
		{"english from uk", types.MediaItem{OriginalLanguage: "en", OriginCountry: []string{"GB"}}, false},
		{"spanish from us", types.MediaItem{OriginalLanguage: "es", OriginCountry: []string{"US"}}, false},
		{"us english", types.MediaItem{OriginalLanguage: "en", OriginCountry: []string{"US"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLocale.Allows(LocaleInternational, tt.item))
			assert.True(t, DefaultLocale.Allows(LocaleAny, tt.item))
		})
	}
}

func TestRowRegistry(t *testing.T) {
	reg, err := NewRowRegistry(DefaultRows)
	require.NoError(t, err)
	assert.Len(t, reg.All(), len(DefaultRows))
	assert.Equal(t, DefaultRows[0].ID, reg.All()[0].ID)

	row, ok := reg.Get("international-tv")
	require.True(t, ok)
	assert.Equal(t, LocaleInternational, row.Locale)

	_, err = NewRowRegistry([]RowConfig{
		{ID: "a", Category: "popular", MediaType: types.MediaTypeMovie},
		{ID: "a", Category: "popular", MediaType: types.MediaTypeMovie},
	})
	assert.Error(t, err)

	_, err = NewRowRegistry([]RowConfig{{ID: "b", Category: "airing_today", MediaType: types.MediaTypeMovie}})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
