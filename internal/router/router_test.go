package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "second", r.Active().Title())
	assert.Equal(t, "first", r.Base().Title())
	assert.True(t, s2.initRan)
}

func TestPop(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	r.Pop()
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "first", r.Active().Title())

	r.Pop()
	assert.Equal(t, 1, r.Depth(), "pop at bottom is a no-op")
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "third", r.Active().Title())
	assert.True(t, s3.initRan)
}

func TestReset(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	r.Reset(&stubScreen{title: "fresh"})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "fresh", r.Active().Title())
}

func TestNavigationMessages(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Update(PushScreenMsg{Screen: s2})
	require.Equal(t, "second", r.Active().Title())

	s3 := &stubScreen{title: "third"}
	r.Update(ReplaceScreenMsg{Screen: s3})
	assert.Equal(t, "third", r.Active().Title())
	assert.True(t, s3.initRan)

	r.Update(PopScreenMsg{})
	assert.Equal(t, "first", r.Active().Title())
}

func TestKeysGoToTopOtherMessagesToAll(t *testing.T) {
	base := &stubScreen{title: "base"}
	top := &stubScreen{title: "top"}
	r := New(base)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	assert.Empty(t, base.got)
	assert.Len(t, top.got, 1)

	r.Update(screen.RefreshMsg{})
	assert.Equal(t, []tea.Msg{screen.RefreshMsg{}}, base.got)
	assert.Len(t, top.got, 2)
}
