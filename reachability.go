package authkit

import "sync/atomic"

// Reachability reports current network connectivity. Every transport call
// consults it before touching the network; offline fails fast with
// ErrNoInternet and issues zero HTTP requests.
//
// The mobile shell feeds a platform reachability observer into a
// [ReachabilityFlag]; headless deployments keep the always-online default.
type Reachability interface {
	Online() bool
}

// ReachabilityFlag is an atomic connectivity flag, safe for a background
// observer goroutine to flip while flows read it.
type ReachabilityFlag struct {
	online atomic.Bool
}

// NewReachabilityFlag returns a flag that starts online.
func NewReachabilityFlag() *ReachabilityFlag {
	f := &ReachabilityFlag{}
	f.online.Store(true)
	return f
}

// SetOnline updates the flag.
func (f *ReachabilityFlag) SetOnline(online bool) {
	f.online.Store(online)
}

// Online reports the last observed connectivity state.
func (f *ReachabilityFlag) Online() bool {
	return f.online.Load()
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }
