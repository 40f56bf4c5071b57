package configdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"truncated object", `{"custom_title": "x"`},
		{"not an object", `[1,2,3]`},
		{"plain text", `not json at all`},
		{"wrong leaf type", `{"refresh_interval_seconds": {"nested": true}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parsing config")
		})
	}
}

func TestSerializeIsCanonical(t *testing.T) {
	d := WithDefaults(Partial{CustomTitle: strPtr("Széll Kálmán tér")})

	s1 := Serialize(d)
	s2 := Serialize(d)
	assert.Equal(t, s1, s2)

	// keys come out sorted regardless of struct declaration order
	assert.Less(t, strings.Index(s1, `"clock"`), strings.Index(s1, `"custom_title"`))
	assert.Less(t, strings.Index(s1, `"custom_title"`), strings.Index(s1, `"display"`))
}

func TestRoundTripIdempotence(t *testing.T) {
	docs := []Partial{
		{},
		{CustomTitle: strPtr("Октогон 🚋"), RefreshIntervalSeconds: intPtr(999)},
		{Layout: &PartialLayout{StopOrder: listPtr("F01234", "F04567"), ColumnsPerRow: intPtr(-3)}},
		{Style: &PartialStyle{CustomEmojis: &PartialEmojis{Bus: strPtr("🚐")}}},
	}
	for _, p := range docs {
		want := WithDefaults(p)

		parsed, err := Parse(Serialize(want))
		require.NoError(t, err)
		assert.Equal(t, want, WithDefaults(parsed))
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	a := WithDefaults(Partial{})
	b := WithDefaults(Partial{CustomTitle: strPtr("x")})

	assert.Len(t, Fingerprint(a), 8)
	assert.Equal(t, Fingerprint(a), Fingerprint(WithDefaults(Partial{})))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestExportRoundTripsAndKeepsUnicode(t *testing.T) {
	d := WithDefaults(Partial{CustomTitle: strPtr("Fővám tér 🚍")})
	out := Export(d)

	assert.Contains(t, out, "Fővám tér 🚍")
	assert.Contains(t, out, "🚋")
	assert.NotContains(t, out, `\u`)
	assert.True(t, strings.HasPrefix(out, "{\n  \""))

	parsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, d, WithDefaults(parsed))

	// byte-for-byte stable across export/parse/export
	assert.Equal(t, out, Export(WithDefaults(parsed)))
}
