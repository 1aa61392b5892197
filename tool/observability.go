package tool

import "sync"

// InvokeObservation captures one tool invocation outcome.
type InvokeObservation struct {
	ToolName   string
	DurationMS int64
	Success    bool
	ErrorCode  string
}

// DiscoveryObservation captures one discovery pass over a source.
type DiscoveryObservation struct {
	Source     string
	Registered int
	Skipped    int
	DurationMS int64
	Success    bool
}

// Observer receives tool-level observability events.
type Observer interface {
	ObserveInvoke(observation InvokeObservation)
	ObserveDiscovery(observation DiscoveryObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvoke(InvokeObservation)       {}
func (noopObserver) ObserveDiscovery(DiscoveryObservation) {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide tool observer. A nil observer restores
// the no-op default.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func currentObserver() Observer {
	observerMu.RLock()
	defer observerMu.RUnlock()
	return activeObserver
}

func emitInvokeObservation(observation InvokeObservation) {
	currentObserver().ObserveInvoke(observation)
}

// EmitDiscoveryObservation reports a finished discovery pass.
func EmitDiscoveryObservation(observation DiscoveryObservation) {
	currentObserver().ObserveDiscovery(observation)
}
