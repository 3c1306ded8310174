package smartcontent_test

import (
	"context"
	"testing"

	"github.com/m-zajac/smartcontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitForce(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]any
		want      map[string]any
		wantForce bool
	}{
		{
			name:      "no force",
			params:    map[string]any{"contentId": "a"},
			want:      map[string]any{"contentId": "a"},
			wantForce: false,
		},
		{
			name:      "force true",
			params:    map[string]any{"contentId": "a", "force": true},
			want:      map[string]any{"contentId": "a"},
			wantForce: true,
		},
		{
			name:      "force false",
			params:    map[string]any{"contentId": "a", "force": false},
			want:      map[string]any{"contentId": "a"},
			wantForce: false,
		},
		{
			name:      "force not a bool",
			params:    map[string]any{"force": "yes"},
			want:      map[string]any{},
			wantForce: false,
		},
		{
			name:      "nil params",
			params:    nil,
			want:      map[string]any{},
			wantForce: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, force := smartcontent.SplitForce(tt.params)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantForce, force)
		})
	}
}

func TestSplitForceKeepsInput(t *testing.T) {
	in := map[string]any{"contentId": "a", "force": true}

	_, _ = smartcontent.SplitForce(in)

	assert.Equal(t, map[string]any{"contentId": "a", "force": true}, in)
}

func TestSearchMap(t *testing.T) {
	ctx := context.Background()
	searchParams := map[string]any{"contentId": "test-id", "contentUrl": "test-url"}

	newMapHandle := func(t *testing.T, valid bool) (*smartcontent.Handle[map[string]any, map[string]any], *[]map[string]any) {
		var calls []map[string]any
		search := func(ctx context.Context, p map[string]any) (map[string]any, error) {
			calls = append(calls, p)
			return map[string]any{"id": "test-id"}, nil
		}

		validator := smartcontent.Never
		if valid {
			validator = smartcontent.Always
		}
		f, err := smartcontent.New(search, smartcontent.WithValidator(validator))
		require.NoError(t, err)
		h, err := f.Handle("test-id")
		require.NoError(t, err)

		return h, &calls
	}

	t.Run("cache invalid", func(t *testing.T) {
		h, calls := newMapHandle(t, false)

		smartcontent.SearchMap(ctx, h, searchParams)

		assert.Equal(t, []map[string]any{searchParams}, *calls)
		assert.Equal(t, map[string]any{"id": "test-id"}, h.Content())
	})

	t.Run("cache valid", func(t *testing.T) {
		h, calls := newMapHandle(t, true)

		smartcontent.SearchMap(ctx, h, searchParams)

		assert.Empty(t, *calls)
	})

	t.Run("cache valid, forced", func(t *testing.T) {
		h, calls := newMapHandle(t, true)

		forced := map[string]any{"contentId": "test-id", "contentUrl": "test-url", "force": true}
		smartcontent.SearchMap(ctx, h, forced)

		require.Len(t, *calls, 1)
		assert.Equal(t, searchParams, (*calls)[0])
		assert.NotContains(t, (*calls)[0], "force")
	})
}
