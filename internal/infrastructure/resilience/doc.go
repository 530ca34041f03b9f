// Package resilience provides the circuit breaker that guards remote content
// stores.
//
// A breaker is Closed while calls succeed, Open once ReadyToTrip accepts the
// failure counts, and Half-Open after Timeout, when up to MaxRequests trial
// calls decide whether it closes again. Open breakers reject calls with
// ErrCircuitOpen without running them.
//
// IsSuccessful decides what counts as a failure; stores use it so that a
// missing post does not trip the breaker:
//
//	breaker := resilience.New("rest-store", resilience.Settings{
//		ReadyToTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 5 },
//		IsSuccessful: func(err error) bool {
//			return err == nil || errors.Is(err, post.ErrNotFound)
//		},
//	})
//	posts, err := resilience.Call(breaker, func() ([]post.Post, error) {
//		return fetch(ctx)
//	})
package resilience
