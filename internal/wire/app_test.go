package wire

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/oceannotes/internal/notes"
)

func testConfig(t *testing.T, url string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.Set("storage.url", url)
	v.Set("storage.key", notes.DefaultKey)
	v.Set("log.level", "error")
	v.Set("log.format", "json")
	v.Set("render.max_heading", 3)
	v.Set("autosave.delay", "250ms")
	return v
}

func TestBuildAppSeedsOnce(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "ocean.db")

	app, err := BuildApp(ctx, testConfig(t, url))
	require.NoError(t, err)
	ns, err := app.Store.List(ctx)
	require.NoError(t, err)
	require.Len(t, ns, len(notes.DefaultSeeds))
	for _, n := range ns {
		require.NoError(t, app.Store.Delete(ctx, n.ID))
	}
	require.NoError(t, app.Close())

	app, err = BuildApp(ctx, testConfig(t, url))
	require.NoError(t, err)
	defer app.Close()
	ns, err = app.Store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ns, "samples never come back once seeded")
}

func TestBuildAppRejectsUnknownStorage(t *testing.T) {
	_, err := BuildApp(context.Background(), testConfig(t, "redis://localhost"))
	assert.Error(t, err)
}

func TestAppRendererAndAutosave(t *testing.T) {
	app, err := BuildApp(context.Background(), testConfig(t, "mem://"))
	require.NoError(t, err)
	defer app.Close()
	assert.Equal(t, "<h3>deep</h3>", app.Renderer().Render("##### deep"))
	assert.Len(t, app.AutosaveOptions(), 2)
}
