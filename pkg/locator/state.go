package locator

type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseStarting             Phase = "starting"
	PhaseRequestingPermission Phase = "requesting-permission"
	PhaseLocationAcquired     Phase = "location-acquired"
	PhaseResolvingState       Phase = "resolving-state"
	PhaseSendingToServer      Phase = "sending-to-server"
	PhaseDone                 Phase = "done"
	PhaseFailedToSend         Phase = "failed-to-send"
	PhaseError                Phase = "error"
)

// State is what a view renders: the current phase, its status text and the
// narrated log. Values are immutable; transitions return a new State.
type State struct {
	Phase  Phase
	Status string
	Log    []string
}

func InitialState() State {
	return State{Phase: PhaseIdle, Status: "Idle"}
}

// To moves to phase p with the given status text.
func (s State) To(p Phase, status string) State {
	s.Phase = p
	s.Status = status
	return s
}

// Append adds one log line without sharing storage with s.
func (s State) Append(line string) State {
	log := make([]string, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	s.Log = append(log, line)
	return s
}

// Terminal reports whether a run has finished in this phase.
func (s State) Terminal() bool {
	switch s.Phase {
	case PhaseDone, PhaseFailedToSend, PhaseError:
		return true
	}
	return false
}

func (s State) LastLog() string {
	if len(s.Log) == 0 {
		return ""
	}
	return s.Log[len(s.Log)-1]
}
