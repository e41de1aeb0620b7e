package admin

import "sync"

// Notifier shows a message to the user.
type Notifier interface {
	Notify(msg string)
}

// Alerts queues messages until the next page render picks them up.
type Alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *Alerts) Notify(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

// Drain returns the queued messages in arrival order and empties the queue.
func (a *Alerts) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.msgs
	a.msgs = nil
	return out
}
