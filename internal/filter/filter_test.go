package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmpty(t *testing.T) {
	where, args, err := New().
		Contains("name", "").
		Bool("vegan", "").
		Int("post_id", "").
		Equal("role", "").
		Within("location", Box{}).
		Build()
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildConjunction(t *testing.T) {
	where, args, err := New().
		Contains("name", "Kim's").
		Bool("vegan", "true").
		Bool("halal", "0").
		Int("subcategory_id", "7").
		Equal("role", "moderator").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "(name ILIKE ?) AND (vegan = ?) AND (halal = ?) AND (subcategory_id = ?) AND (role = ?)", where)
	assert.Equal(t, []any{"%Kim's%", true, false, 7, "moderator"}, args)
}

func TestContainsEscapesWildcards(t *testing.T) {
	_, args, err := New().Contains("name", `50%_off\`).Build()
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestWithin(t *testing.T) {
	where, args, err := New().Within("location", Box{
		MinLat: "37.4", MaxLat: "37.7", MinLon: "126.8", MaxLon: "127.2",
	}).Build()
	require.NoError(t, err)

	assert.Equal(t, "(ST_Covers(ST_MakeEnvelope(?, ?, ?, ?, 4326), location::geometry))", where)
	assert.Equal(t, []any{126.8, 37.4, 127.2, 37.7}, args)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"bad bool", New().Bool("vegan", "maybe")},
		{"bad int", New().Int("post_id", "seven")},
		{"partial box", New().Within("location", Box{MinLat: "1", MaxLat: "2"})},
		{"non numeric box", New().Within("location", Box{MinLat: "a", MaxLat: "2", MinLon: "1", MaxLon: "2"})},
		{"NaN bound", New().Within("location", Box{MinLat: "NaN", MaxLat: "2", MinLon: "1", MaxLon: "2"})},
		{"NaN upper bound", New().Within("location", Box{MinLat: "1", MaxLat: "2", MinLon: "1", MaxLon: "nan"})},
		{"infinite bound", New().Within("location", Box{MinLat: "1", MaxLat: "2", MinLon: "-Inf", MaxLon: "2"})},
		{"inverted box", New().Within("location", Box{MinLat: "5", MaxLat: "2", MinLon: "1", MaxLon: "2"})},
		{"out of range", New().Within("location", Box{MinLat: "-91", MaxLat: "2", MinLon: "1", MaxLon: "2"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, err := tt.b.Build()
			assert.Error(t, err)
			assert.Empty(t, where)
			assert.Nil(t, args)
		})
	}
}
