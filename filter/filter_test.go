package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLists() []Record {
	return []Record{
		{
			"id":           "L1",
			"name":         "Weekly Newsletter",
			"date_created": time.Now().AddDate(0, 0, -40).Format(time.RFC3339),
			"stats":        map[string]any{"member_count": float64(120)},
		},
		{
			"id":           "L2",
			"name":         "Beta testers",
			"date_created": time.Now().AddDate(0, 0, -3).Format(time.RFC3339),
			"stats":        map[string]any{"member_count": float64(4)},
		},
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{name: "valid expression", expression: `containsFold(name, "news")`},
		{name: "record helpers", expression: `memberCount() > 10 and has("stats")`},
		{name: "empty expression", expression: "  ", wantErr: true, errContains: "empty expression"},
		{name: "invalid syntax", expression: `containsFold(name, "unclosed`, wantErr: true},
		{name: "not boolean", expression: `1 + 2`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewExprCompiler().Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compileErr *CompilationError
				assert.ErrorAs(t, err, &compileErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestEvaluate(t *testing.T) {
	lists := sampleLists()

	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{name: "field comparison", expression: `id == "L2"`, want: []string{"L2"}},
		{name: "nested field", expression: `stats.member_count >= 100`, want: []string{"L1"}},
		{name: "case-insensitive contains", expression: `containsFold(name, "NEWS")`, want: []string{"L1"}},
		{name: "dotted path helper", expression: `num("stats.member_count") < 10`, want: []string{"L2"}},
		{name: "date helper", expression: `daysSince(date_created) > 30`, want: []string{"L1"}},
		{name: "parsed time", expression: `parseTime(date_created).After(daysAgo(7))`, want: []string{"L2"}},
		{name: "missing field", expression: `has("settings")`, want: []string{}},
		{name: "whole record", expression: `Record.id != ""`, want: []string{"L1", "L2"}},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			matches, err := Select(context.Background(), filter, lists)
			require.NoError(t, err)

			ids := make([]string, 0, len(matches))
			for _, rec := range matches {
				ids = append(ids, rec["id"].(string))
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMatchSurfacesEvaluationErrors(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`stats.member_count > 10`)
	require.NoError(t, err)

	_, err = filter.Match(Record{"id": "C1", "stats": "oops"})
	require.Error(t, err)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "C1", evalErr.RecordID)

	assert.False(t, filter.Evaluate(Record{"id": "C1", "stats": "oops"}))
}

func TestSelectHonorsContext(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`true`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Select(ctx, filter, sampleLists())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecords(t *testing.T) {
	payload := map[string]any{
		"campaigns": []any{
			map[string]any{"id": "C1"},
			"skipped",
			map[string]any{"id": "C2"},
		},
		"total_items": float64(2),
	}

	records, err := Records(payload, "campaigns")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C2", records[1]["id"])

	_, err = Records(payload, "lists")
	assert.Error(t, err)
	_, err = Records(nil, "lists")
	assert.Error(t, err)
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`id == "a"`)
	require.NoError(t, err)
	again, err := compiler.Compile(` id == "a" `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.Size())

	_, _ = compiler.Compile(`id == "b"`)
	_, _ = compiler.Compile(`id == "c"`)
	assert.Equal(t, 2, compiler.Size())

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
	assert.Equal(t, 0, NewExprCompiler().Size())
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)
	_, _ = cache.Get("a")
	cache.Put("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	cache.Put("a", 10)
	v, _ = cache.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, cache.Len())
}

func TestManager(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilters(map[string]string{
		"big":   `memberCount() >= 100`,
		"small": `memberCount() < 10`,
	}))
	assert.Equal(t, []string{"big", "small"}, m.ListFilters())

	filter, err := m.Resolve("big", "")
	require.NoError(t, err)
	assert.True(t, filter.Evaluate(sampleLists()[0]))

	filter, err = m.Resolve("", `id == "L2"`)
	require.NoError(t, err)
	assert.True(t, filter.Evaluate(sampleLists()[1]))

	_, err = m.Resolve("nope", "")
	assert.ErrorIs(t, err, ErrPresetNotFound)

	err = m.RegisterFilters(map[string]string{"broken": `(`, "fine": `true`})
	require.Error(t, err)
	_, ok := m.GetFilter("fine")
	assert.False(t, ok, "a failed batch registers nothing")
}
