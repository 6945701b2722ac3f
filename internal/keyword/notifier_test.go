package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlarmer struct {
	calls []alarmCall
}

type alarmCall struct {
	users []string
	msg   string
}

func (f *fakeAlarmer) SendAlarm(users []string, msg string) {
	f.calls = append(f.calls, alarmCall{users: users, msg: msg})
}

func TestNotifier_ContentCreated(t *testing.T) {
	t.Run("Dispatches once with deduplicated watcher union", func(t *testing.T) {
		cache := Cache{
			"게시글": {"u1", "u2"},
			"댓글":  {"u1"},
		}
		alarm := &fakeAlarmer{}
		n := NewNotifier(cache, alarm)

		n.ContentCreated(KindPost, 1, "게시글 댓글")

		require.Len(t, alarm.calls, 1)
		assert.ElementsMatch(t, []string{"u1", "u2"}, alarm.calls[0].users)
	})

	t.Run("No match means no dispatch", func(t *testing.T) {
		cache := Cache{"golang": {"u1"}}
		alarm := &fakeAlarmer{}
		n := NewNotifier(cache, alarm)

		n.ContentCreated(KindPost, 1, "nothing to see here")

		assert.Empty(t, alarm.calls)
	})

	t.Run("Matching is case-sensitive substring containment", func(t *testing.T) {
		cache := Cache{"Go": {"u1"}}
		alarm := &fakeAlarmer{}
		n := NewNotifier(cache, alarm)

		n.ContentCreated(KindComment, 7, "learning go today")
		assert.Empty(t, alarm.calls)

		n.ContentCreated(KindComment, 8, "learning Golang today")
		require.Len(t, alarm.calls, 1)
		assert.Equal(t, []string{"u1"}, alarm.calls[0].users)
	})

	t.Run("Message depends on content kind", func(t *testing.T) {
		cache := Cache{"beta": {"u1"}}
		alarm := &fakeAlarmer{}
		n := NewNotifier(cache, alarm)

		n.ContentCreated(KindPost, 1, "beta release")
		n.ContentCreated(KindComment, 2, "beta feedback")

		require.Len(t, alarm.calls, 2)
		assert.NotEqual(t, alarm.calls[0].msg, alarm.calls[1].msg)
	})
}
