package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecast/internal/geometry"
)

func pos(x, y float64) *Position {
	return &Position{
		Viewport: geometry.Point{X: x, Y: y},
		Surface:  geometry.Point{X: x - 10, Y: y - 20},
	}
}

func TestBeginComposerRequiresCommentMode(t *testing.T) {
	s := NewStore()

	assert.False(t, s.BeginComposer("s1", "", "", pos(100, 100)))
	assert.Nil(t, s.ActiveComposer())

	s.SetCommentMode(true)
	assert.True(t, s.BeginComposer("s1", "el-3", "Goal card", pos(100, 100)))

	c := s.ActiveComposer()
	require.NotNil(t, c)
	assert.Equal(t, "s1", c.SceneID)
	assert.Equal(t, "el-3", c.ElementID)
	assert.Equal(t, "Goal card", c.TargetLabel)
}

func TestComposerCancelLeavesNoResidue(t *testing.T) {
	s := NewStore()
	s.SetCommentMode(true)
	require.True(t, s.BeginComposer("s1", "", "", pos(50, 50)))

	s.CancelComposer()

	assert.Nil(t, s.ActiveComposer())
	assert.Empty(t, s.AllThreads())

	// A subsequent create elsewhere is not blocked by leftover state.
	th := s.CreateThread(CreateThreadInput{SceneID: "s2", Message: "fresh", Author: tester})
	require.NotNil(t, th)
	assert.Equal(t, "s2", th.SceneID)
}

func TestSubmitComposerCreatesThreadAndOpensPopover(t *testing.T) {
	s := NewStore()
	s.SetCommentMode(true)
	require.True(t, s.BeginComposer("s1", "el-1", "Intro title", pos(120, 240)))

	th := s.SubmitComposer("looks wrong", tester)
	require.NotNil(t, th)

	assert.Equal(t, "s1", th.SceneID)
	assert.Equal(t, "el-1", th.ElementID)
	require.NotNil(t, th.Position)
	assert.Equal(t, geometry.Point{X: 120, Y: 240}, th.Position.Viewport)
	assert.Equal(t, th.ID, s.ActivePopover())
	assert.Nil(t, s.ActiveComposer())
}

func TestSubmitComposerRejectsEmptyMessageKeepsDraft(t *testing.T) {
	s := NewStore()
	s.SetCommentMode(true)
	require.True(t, s.BeginComposer("s1", "", "", pos(0, 0)))

	assert.Nil(t, s.SubmitComposer("   ", tester))

	// Draft survives a failed validation so the user can keep typing.
	assert.NotNil(t, s.ActiveComposer())
	assert.Empty(t, s.AllThreads())
}

func TestSubmitWithoutComposerIsNil(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.SubmitComposer("hello", tester))
}

func TestSecondComposerReplacesFirst(t *testing.T) {
	s := NewStore()
	s.SetCommentMode(true)
	require.True(t, s.BeginComposer("s1", "", "", pos(1, 1)))
	require.True(t, s.BeginComposer("s2", "", "", pos(2, 2)))

	c := s.ActiveComposer()
	require.NotNil(t, c)
	assert.Equal(t, "s2", c.SceneID)
}

func TestLeavingCommentModeCancelsComposer(t *testing.T) {
	s := NewStore()
	s.SetCommentMode(true)
	require.True(t, s.BeginComposer("s1", "", "", pos(1, 1)))

	s.SetCommentMode(false)

	assert.Nil(t, s.ActiveComposer())
	assert.False(t, s.CommentMode())
}
