package rdpwatch

// eventType describes an event type.
type eventType = string

const (
	eventWarning            eventType = "warning"
	eventAcquired           eventType = "acquired lock"
	eventRoleDetected       eventType = "role detected"
	eventSettingsChanged    eventType = "settings changed"
	eventMonitorStarted     eventType = "monitor started"
	eventMonitorStopped     eventType = "monitor stopped"
	eventSessionState       eventType = "session state"
	eventSessionNotified    eventType = "session notified"
	eventSessionActivated   eventType = "session activated"
	eventDisconnectDetected eventType = "disconnect detected"
	eventProcessTerminating eventType = "process terminating"
	eventServiceStopped     eventType = "service stopped"
	eventServiceStarted     eventType = "service started"
	eventServiceFailed      eventType = "service failed"
	eventRestartFinished    eventType = "restart finished"
)

// Event is an interface describing known events.
type Event interface {
	Type() string
	event()
}

// NewEvent creates a new event from the given event type. It is used primarily
// for decoding events from its type. Nil is returned if the event type is
// unknown.
func NewEvent(eventType string) Event {
	switch eventType {
	case eventWarning:
		return &EventWarning{}
	case eventAcquired:
		return &EventAcquired{}
	case eventRoleDetected:
		return &EventRoleDetected{}
	case eventSettingsChanged:
		return &EventSettingsChanged{}
	case eventMonitorStarted:
		return &EventMonitorStarted{}
	case eventMonitorStopped:
		return &EventMonitorStopped{}
	case eventSessionState:
		return &EventSessionState{}
	case eventSessionNotified:
		return &EventSessionNotified{}
	case eventSessionActivated:
		return &EventSessionActivated{}
	case eventDisconnectDetected:
		return &EventDisconnectDetected{}
	case eventProcessTerminating:
		return &EventProcessTerminating{}
	case eventServiceStopped:
		return &EventServiceStopped{}
	case eventServiceStarted:
		return &EventServiceStarted{}
	case eventServiceFailed:
		return &EventServiceFailed{}
	case eventRestartFinished:
		return &EventRestartFinished{}
	default:
		return nil
	}
}

// EventWarning is emitted when a non-fatal error occurs.
type EventWarning struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

func (ev *EventWarning) Type() string { return eventWarning }
func (ev *EventWarning) event()       {}

// EventAcquired is emitted when the flock (i.e. write lock on the journal) is
// acquired, which is on startup.
type EventAcquired struct {
	PID int `json:"pid"`
}

func (ev *EventAcquired) Type() string { return eventAcquired }
func (ev *EventAcquired) event()       {}

// EventRoleDetected is emitted once on startup after the role of the hosting
// process has been decided. Error is set if the identity lookup failed and the
// default role was assumed.
type EventRoleDetected struct {
	Role  string `json:"role"`
	Exe   string `json:"exe,omitempty"`
	Error string `json:"error,omitempty"`
}

func (ev *EventRoleDetected) Type() string { return eventRoleDetected }
func (ev *EventRoleDetected) event()       {}

// EventSettingsChanged is emitted every time settings are (re)applied.
type EventSettingsChanged struct {
	ExitRemoteClients bool   `json:"exit_remote_clients"`
	DependentService  string `json:"dependent_service"`
	BaseService       string `json:"base_service"`
}

func (ev *EventSettingsChanged) Type() string { return eventSettingsChanged }
func (ev *EventSettingsChanged) event()       {}

// EventMonitorStarted is emitted when both observer loops are up.
type EventMonitorStarted struct {
	RunID     string    `json:"run_id"`
	SessionID SessionID `json:"session_id"`
}

func (ev *EventMonitorStarted) Type() string { return eventMonitorStarted }
func (ev *EventMonitorStarted) event()       {}

// EventMonitorStopped is emitted once both observer loops have exited.
type EventMonitorStopped struct {
	RunID string `json:"run_id"`
}

func (ev *EventMonitorStopped) Type() string { return eventMonitorStopped }
func (ev *EventMonitorStopped) event()       {}

// EventSessionState is emitted for every successful session query.
type EventSessionState struct {
	Observer         string    `json:"observer"`
	State            string    `json:"state"`
	ConsoleSessionID SessionID `json:"console_session_id"`
}

func (ev *EventSessionState) Type() string { return eventSessionState }
func (ev *EventSessionState) event()       {}

// EventSessionNotified is emitted for every wake-up of the event loop.
type EventSessionNotified struct {
	Mask NotifyMask `json:"mask"`
}

func (ev *EventSessionNotified) Type() string { return eventSessionNotified }
func (ev *EventSessionNotified) event()       {}

// EventSessionActivated is emitted when the latch is armed.
type EventSessionActivated struct {
	RunID    string `json:"run_id"`
	Observer string `json:"observer"`
}

func (ev *EventSessionActivated) Type() string { return eventSessionActivated }
func (ev *EventSessionActivated) event()       {}

// EventDisconnectDetected is emitted by the observer that consumed the latch,
// right before the reaction runs.
type EventDisconnectDetected struct {
	RunID    string `json:"run_id"`
	Observer string `json:"observer"`
}

func (ev *EventDisconnectDetected) Type() string { return eventDisconnectDetected }
func (ev *EventDisconnectDetected) event()       {}

// EventProcessTerminating is emitted right before a process is terminated.
type EventProcessTerminating struct {
	Role string `json:"role"`
	PID  int    `json:"pid"`
}

func (ev *EventProcessTerminating) Type() string { return eventProcessTerminating }
func (ev *EventProcessTerminating) event()       {}

// EventServiceStopped is emitted when a service has reached the stopped state.
type EventServiceStopped struct {
	Service string `json:"service"`
}

func (ev *EventServiceStopped) Type() string { return eventServiceStopped }
func (ev *EventServiceStopped) event()       {}

// EventServiceStarted is emitted when a service has reached the running state.
type EventServiceStarted struct {
	Service string `json:"service"`
}

func (ev *EventServiceStarted) Type() string { return eventServiceStarted }
func (ev *EventServiceStarted) event()       {}

// EventServiceFailed is emitted when stopping or starting a service failed or
// timed out.
type EventServiceFailed struct {
	Service string `json:"service"`
	Op      string `json:"op"` // "stop" or "start"
	Error   string `json:"error"`
}

func (ev *EventServiceFailed) Type() string { return eventServiceFailed }
func (ev *EventServiceFailed) event()       {}

// EventRestartFinished is emitted at the end of a dependent pair restart.
type EventRestartFinished struct {
	Dependent string `json:"dependent"`
	Base      string `json:"base"`
	OK        bool   `json:"ok"`
}

func (ev *EventRestartFinished) Type() string { return eventRestartFinished }
func (ev *EventRestartFinished) event()       {}
