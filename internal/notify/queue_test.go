package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotifyAppendsInOrder(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()

	q.Notify("added", KindSuccess)
	q.Push(Toast{Message: "hello"})

	got := q.List()
	require.Len(t, got, 2)
	assert.Equal(t, KindSuccess, got[0].Kind)
	assert.Equal(t, KindInfo, got[1].Kind)
	assert.Less(t, got[0].ID, got[1].ID)
}

func TestToastExpires(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	defer q.Close()

	q.Notify("short lived", KindInfo)
	sticky := q.Push(Toast{Message: "sticky", Kind: KindError})

	assert.Eventually(t, func() bool { return len(q.List()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, sticky, q.List()[0].ID)
}

func TestDismissAndClear(t *testing.T) {
	q := NewQueue(time.Hour)
	defer q.Close()

	a := q.Push(Toast{Message: "a", Duration: time.Hour})
	q.Push(Toast{Message: "b", Duration: time.Hour})
	q.Dismiss(a)
	q.Dismiss(12345)
	require.Len(t, q.List(), 1)

	q.Clear()
	assert.Empty(t, q.List())
}

func TestPushAfterCloseIsDropped(t *testing.T) {
	q := NewQueue(time.Hour)
	q.Notify("x", KindInfo)
	q.Close()

	assert.Equal(t, int64(-1), q.Push(Toast{Message: "late"}))
	assert.Len(t, q.List(), 1)
}

func TestHubKeepsSessionsApart(t *testing.T) {
	hub := NewHub(time.Hour)
	defer hub.Close()

	hub.For("alice").Notify("Welcome back, alice!", KindSuccess)
	require.Len(t, hub.For("alice").List(), 1)
	assert.Empty(t, hub.For("bob").List())

	hub.For("bob").Clear()
	assert.Len(t, hub.For("alice").List(), 1)
	assert.Same(t, hub.For("alice"), hub.For("alice"))
	assert.Equal(t, 2, hub.Len())
}

func TestHubCloseStopsTimers(t *testing.T) {
	hub := NewHub(time.Hour)
	hub.For("s1").Notify("pending", KindInfo)
	hub.Close()

	late := hub.For("s2")
	assert.Equal(t, int64(-1), late.Push(Toast{Message: "dropped"}))
	assert.Empty(t, late.List())
}
