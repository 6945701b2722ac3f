package keyword

import (
	"encoding/json"
	"log"
	"strings"
	"time"
)

// Broadcaster pushes a raw message to every connected client.
type Broadcaster interface {
	Send(msg []byte)
}

// AlarmService is the delivery side of the keyword watch. Delivery is
// best effort: it runs on its own goroutine after a fixed delay, the
// triggering request never waits for it, and failures are only logged.
type AlarmService struct {
	Delay time.Duration
	Hub   Broadcaster // optional; nil means log-only delivery
}

type alarmPayload struct {
	Type string    `json:"type"`
	Data alarmData `json:"data"`
}

type alarmData struct {
	Users   []string `json:"users"`
	Message string   `json:"message"`
}

// SendAlarm delivers msg to users after the configured delay.
func (a *AlarmService) SendAlarm(users []string, msg string) {
	go func() {
		if a.Delay > 0 {
			time.Sleep(a.Delay)
		}

		log.Printf("[%s]: %s", strings.Join(users, ", "), msg)

		if a.Hub == nil {
			return
		}
		payload, err := json.Marshal(alarmPayload{
			Type: "keyword_alarm",
			Data: alarmData{Users: users, Message: msg},
		})
		if err != nil {
			log.Printf("Error marshalling alarm payload: %v", err)
			return
		}
		a.Hub.Send(payload)
	}()
}
