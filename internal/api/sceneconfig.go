package api

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/scenecast/internal/bus"
	"github.com/scenecast/internal/configtree"
)

// sceneConfigStore accumulates per-language scene configuration
// documents. Each PATCH body is {sceneID: snapshot}; snapshots merge into
// the stored document with the same array-patch semantics the editor
// uses, so partial edits and whole-scene saves both land correctly.
type sceneConfigStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any // language -> {sceneID: config}
}

func newSceneConfigStore() *sceneConfigStore {
	return &sceneConfigStore{docs: make(map[string]map[string]any)}
}

func (s *sceneConfigStore) patch(language string, body map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[language]
	if !ok {
		doc = map[string]any{}
	}
	merged := configtree.Merge(doc, body).(map[string]any)
	s.docs[language] = merged
	return merged
}

func (s *sceneConfigStore) get(language string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[language]
	if !ok {
		return map[string]any{}
	}
	return configtree.Clone(doc).(map[string]any)
}

func (s *Server) patchSceneConfig(c echo.Context) error {
	language := c.Param("language")

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if len(body) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Empty scene config patch")
	}

	merged := s.scenes.patch(language, body)

	if s.events != nil {
		for sceneID := range body {
			s.events.Publish(bus.TopicSceneConfigPatched, bus.SceneConfigPatched{
				SceneID: sceneID,
				Config:  merged[sceneID],
			})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSceneConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scenes.get(c.Param("language")))
}
