package providers

import "sync"

// NotifierInterface is the observer list for logbook-wide notifications.
// The filter engine raises FilterReset whenever its state changes.
type NotifierInterface interface {
	FilterReset()
	OnFilterReset(fn func())
}

type Notifier struct {
	mu          sync.Mutex
	filterReset []func()
}

func NewNotifierProvider() NotifierInterface {
	return &Notifier{}
}

func (n *Notifier) OnFilterReset(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.filterReset = append(n.filterReset, fn)
}

func (n *Notifier) FilterReset() {
	n.mu.Lock()
	subscribers := make([]func(), len(n.filterReset))
	copy(subscribers, n.filterReset)
	n.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
