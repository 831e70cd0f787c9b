// Package rdpwatch is the core of the rdpwatch application. It watches the
// connectivity of the remote desktop session that the current process belongs
// to, and reacts once that session goes from active to disconnected.
//
// Mechanism of Operation
//
// Two Observers
//
// The session subsystem offers a blocking wait for session events, but that
// wait does not report a disconnect that happened before it was called. There
// is also a window between two consecutive waits, for example when another
// program flushes all waiters, in which a disconnect can slip through. The
// only reliable backstop is polling, and polling is expensive, so it is done
// with a long interval.
//
// ConnectionMonitor therefore runs two goroutines at once: a polling loop and
// an event loop. Neither talks to the other. Instead, both share a single
// latch that is armed when the session is seen active and consumed when the
// session is seen disconnected. Whichever loop manages to consume the armed
// latch runs the reaction; the other one finds it empty and does nothing.
//
// The Console Session
//
// A session that is reported active is only interesting if it is not the
// session physically attached to the console. The monitor compares its own
// session ID against the active console session ID on every query.
//
// Reactions
//
// What happens on a disconnect depends on the role of the hosting process:
//
//    - clipboard relay and remote client processes exit with status 0, and
//      the system relaunches them on reconnect;
//    - the privileged service host restarts the dependent service pair,
//      stopping the dependent service first and then the base service, and
//      only starts the base service again. The dependent service starts itself
//      on demand.
//
// Everything that happens is written into a Journaler as typed events.
package rdpwatch
