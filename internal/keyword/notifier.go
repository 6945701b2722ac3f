package keyword

import "strings"

// Kind tells the notifier what sort of content triggered the event.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Alarmer delivers one alarm to a set of users. Implementations are
// expected to be asynchronous; the notifier never waits on delivery.
type Alarmer interface {
	SendAlarm(users []string, msg string)
}

// Notifier scans new content against the watch cache and raises at most
// one alarm per event, addressed to the deduplicated union of every
// watcher whose keyword matched.
type Notifier struct {
	cache Cache
	alarm Alarmer
}

func NewNotifier(cache Cache, alarm Alarmer) *Notifier {
	return &Notifier{cache: cache, alarm: alarm}
}

// ContentCreated is called after a post or comment has been persisted.
// Matching is plain case-sensitive substring containment, no word
// boundaries. No match means no alarm.
func (n *Notifier) ContentCreated(kind Kind, targetID uint, content string) {
	seen := make(map[string]struct{})
	var users []string
	for kw, watchers := range n.cache {
		if !strings.Contains(content, kw) {
			continue
		}
		for _, u := range watchers {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			users = append(users, u)
		}
	}

	if len(users) == 0 {
		return
	}

	msg := "a new post containing your keyword has been published"
	if kind == KindComment {
		msg = "a new comment containing your keyword has been published"
	}
	n.alarm.SendAlarm(users, msg)
}
