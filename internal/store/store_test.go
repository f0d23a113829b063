package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCard(argument, tag, content string) types.Card {
	return types.Card{
		Argument:   argument,
		Tag:        tag,
		Citation:   `Smith 2024 - Example Times, "Title," https://example.com/a`,
		CutContent: content,
		URL:        "https://example.com/a",
		Title:      "Title",
		Author:     "Jane Smith",
	}
}

func TestSaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, sampleCard("carbon tax works", "Tag one.", "The carbon tax reduced emissions."))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	cards, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, saved.ID, cards[0].ID)
	assert.Equal(t, "carbon tax works", cards[0].Argument)
	assert.Equal(t, "The carbon tax reduced emissions.", cards[0].CutContent)
}

func TestSaveRejectsEmptyContent(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(context.Background(), types.Card{Argument: "a", Tag: "t"})
	assert.Error(t, err)
}

func TestListFullText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, sampleCard("arg one", "Transit tag.", "Ridership rose after the transit levy passed."))
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleCard("arg two", "Climate tag.", "Emissions fell under the carbon price."))
	require.NoError(t, err)

	cards, err := s.List(ctx, ListOptions{Query: "transit"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "arg one", cards[0].Argument)
}

func TestListByArgument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, sampleCard("arg one", "t", "content one"))
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleCard("arg two", "t", "content two"))
	require.NoError(t, err)

	cards, err := s.List(ctx, ListOptions{Argument: "arg two"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "content two", cards[0].CutContent)
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := sampleCard("arg", "t", "older card")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := s.Save(ctx, older)
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleCard("arg", "t", "newer card"))
	require.NoError(t, err)

	cards, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "newer card", cards[0].CutContent)
}

func TestListMaxResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, sampleCard("arg", "t", "content"))
		require.NoError(t, err)
	}

	cards, err := s.List(ctx, ListOptions{MaxResults: 3})
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestExportYAML(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, sampleCard("arg", "Tag.", "card body"))
	require.NoError(t, err)

	path, err := s.ExportYAML(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dir, "export.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cards []types.Card
	require.NoError(t, yaml.Unmarshal(data, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "card body", cards[0].CutContent)
}

func TestSchemaIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	_, err = s1.Save(context.Background(), sampleCard("arg", "t", "content"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening must not disturb existing rows.
	s2, err := NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s2.Close()

	cards, err := s2.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
