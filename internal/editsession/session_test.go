package editsession

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecast/internal/bus"
	"github.com/scenecast/internal/configtree"
	"github.com/scenecast/internal/sceneconfig"
)

func baseConfig() map[string]any {
	return map[string]any{
		"intro": map[string]any{"title": "Welcome"},
		"goals": []any{
			map[string]any{"title": "first"},
			map[string]any{"title": "second"},
		},
	}
}

func TestFreshSessionIsClean(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)

	assert.False(t, s.Dirty())
	assert.True(t, configtree.Equal(s.Base(), s.Temp()))
}

func TestUpdateFieldMarksDirty(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)

	changed := s.UpdateField("intro.title", "Changed")

	assert.True(t, changed)
	assert.True(t, s.Dirty())

	v, _ := configtree.GetPath(s.Temp(), "intro.title")
	assert.Equal(t, "Changed", v)

	// Base is untouched until save.
	v, _ = configtree.GetPath(s.Base(), "intro.title")
	assert.Equal(t, "Welcome", v)
}

func TestUpdateFieldSkipsEqualValue(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)

	changed := s.UpdateField("intro.title", "Welcome")

	assert.False(t, changed)
	assert.False(t, s.Dirty())
}

func TestEditingFieldCountsAsUnsaved(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)

	s.StartEditingField("intro.title")

	// temp still equals base, but an open editor means unsaved state.
	assert.True(t, s.Dirty())
	assert.Equal(t, "intro.title", s.EditingField())
}

func TestSavePromotesTempAndClearsEditing(t *testing.T) {
	var persisted []any
	persist := func(sceneID string, snapshot any) {
		persisted = append(persisted, snapshot)
	}
	s := NewSession("s1", baseConfig(), persist)

	s.StartEditingField("intro.title")
	s.UpdateField("intro.title", "Changed")
	s.Save()

	assert.False(t, s.Dirty())
	assert.Empty(t, s.EditingField())
	require.Len(t, persisted, 1)
	v, _ := configtree.GetPath(persisted[0], "intro.title")
	assert.Equal(t, "Changed", v)
	v, _ = configtree.GetPath(s.Base(), "intro.title")
	assert.Equal(t, "Changed", v)
}

func TestSaveIdempotence(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)
	s.UpdateField("intro.title", "Changed")

	s.Save()
	baseAfterFirst := s.Base()
	tempAfterFirst := s.Temp()

	s.Save()

	assert.True(t, configtree.Equal(baseAfterFirst, s.Base()))
	assert.True(t, configtree.Equal(tempAfterFirst, s.Temp()))
	assert.False(t, s.Dirty())
}

func TestDiscardResetsTemp(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)
	s.StartEditingField("goals.0.title")
	s.UpdateField("goals.0.title", "rewritten")

	s.Discard()

	assert.False(t, s.Dirty())
	assert.Empty(t, s.EditingField())
	v, _ := configtree.GetPath(s.Temp(), "goals.0.title")
	assert.Equal(t, "first", v)
}

func TestArrayFieldEditThroughPath(t *testing.T) {
	s := NewSession("s1", baseConfig(), nil)

	s.UpdateField("goals.1.title", "z")

	goals, _ := configtree.GetPath(s.Temp(), "goals")
	arr, ok := goals.([]any)
	require.True(t, ok, "goals must stay an array, got %T", goals)
	assert.Equal(t, "z", arr[1].(map[string]any)["title"])
	assert.Equal(t, "first", arr[0].(map[string]any)["title"])
}

func TestSessionDoesNotAliasInitialDocument(t *testing.T) {
	initial := baseConfig()
	s := NewSession("s1", initial, nil)

	initial["intro"].(map[string]any)["title"] = "mutated outside"

	v, _ := configtree.GetPath(s.Temp(), "intro.title")
	assert.Equal(t, "Welcome", v)
}

func TestManagerSessionLifecycle(t *testing.T) {
	m := NewManager(nil, nil)

	a := m.Session("s1", baseConfig())
	b := m.Session("s1", baseConfig())
	assert.Same(t, a, b)

	a.UpdateField("intro.title", "x")
	assert.True(t, m.AnyDirty())

	m.Drop("s1")
	assert.False(t, m.AnyDirty())

	// Re-mounting starts from the provided initial again.
	c := m.Session("s1", baseConfig())
	assert.NotSame(t, a, c)
	assert.False(t, c.Dirty())
}

func TestSaveShipsSnapshotToRemote(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := sceneconfig.NewClient(srv.URL, "en-US", "")
	m := NewManager(client.PersistFunc(), nil)

	s := m.Session("scene-7", baseConfig())
	s.UpdateField("intro.title", "saved remotely")
	s.Save()

	select {
	case body := <-received:
		snapshot, ok := body["scene-7"]
		require.True(t, ok, "body keyed by scene id, got %v", body)
		v, _ := configtree.GetPath(snapshot, "intro.title")
		assert.Equal(t, "saved remotely", v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for remote persist")
	}
}

func TestManagerSavePublishesSceneConfigPatched(t *testing.T) {
	events := bus.New()
	ch, cancel := events.Subscribe(bus.TopicSceneConfigPatched)
	defer cancel()

	m := NewManager(nil, events)
	s := m.Session("s1", baseConfig())
	s.UpdateField("intro.title", "published")
	s.Save()

	got := (<-ch).(bus.SceneConfigPatched)
	assert.Equal(t, "s1", got.SceneID)
	v, _ := configtree.GetPath(got.Config, "intro.title")
	assert.Equal(t, "published", v)
}
