package auth

import "fmt"

// State is a step of Authenticate:
//
//	Start → TryRestore → {Restored | NeedsLogin} → {Ready | LoginFailed}
type State int

const (
	Start State = iota
	TryRestore
	Restored
	NeedsLogin
	Ready
	LoginFailed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case TryRestore:
		return "try-restore"
	case Restored:
		return "restored"
	case NeedsLogin:
		return "needs-login"
	case Ready:
		return "ready"
	case LoginFailed:
		return "login-failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fallback is the reason Authenticate left the happy path.
type Fallback int

const (
	noFallback Fallback = iota
	CacheMiss
	CacheCorrupt
	ResumeRejected
	LoginRejected
	CacheWriteFailed
)

func (f Fallback) String() string {
	switch f {
	case CacheMiss:
		return "cache-miss"
	case CacheCorrupt:
		return "cache-corrupt"
	case ResumeRejected:
		return "resume-rejected"
	case LoginRejected:
		return "login-rejected"
	case CacheWriteFailed:
		return "cache-write-failed"
	default:
		return fmt.Sprintf("Fallback(%d)", int(f))
	}
}

// Fatal is the whole failure policy: only a rejected login stops the run.
func (f Fallback) Fatal() bool {
	return f == LoginRejected
}

type Transition struct {
	From State
	To   State
}
