package store

// ActionType names an event the host render layer can hook into.
type ActionType string

const (
	ActionOnDataReady          ActionType = "onDataReady"
	ActionOnVisibleRangeChange ActionType = "onVisibleRangeChange"
	ActionOnLoadMore           ActionType = "onLoadMore"
	ActionOnCrosshairChange    ActionType = "onCrosshairChange"
)

// ActionCallback receives the payload attached to an emitted action.
type ActionCallback func(payload any)

// ActionStore is the subscribe/emit hub between the data core and the host.
// Like every store it is confined to the chart goroutine, so no locking.
type ActionStore struct {
	nextID      int
	subscribers map[ActionType]map[int]ActionCallback
}

// NewActionStore creates an empty action hub.
func NewActionStore() *ActionStore {
	return &ActionStore{subscribers: make(map[ActionType]map[int]ActionCallback)}
}

// Subscribe registers cb for the action and returns a token for Unsubscribe.
func (a *ActionStore) Subscribe(action ActionType, cb ActionCallback) int {
	if cb == nil {
		return 0
	}
	a.nextID++
	if a.subscribers[action] == nil {
		a.subscribers[action] = make(map[int]ActionCallback)
	}
	a.subscribers[action][a.nextID] = cb
	return a.nextID
}

// Unsubscribe removes a previously registered callback. Unknown tokens are
// ignored.
func (a *ActionStore) Unsubscribe(action ActionType, id int) {
	delete(a.subscribers[action], id)
}

// HasSubscribers reports whether anyone listens for the action.
func (a *ActionStore) HasSubscribers(action ActionType) bool {
	return len(a.subscribers[action]) > 0
}

// Execute fans payload out to every subscriber of the action.
func (a *ActionStore) Execute(action ActionType, payload any) {
	for _, cb := range a.subscribers[action] {
		cb(payload)
	}
}
