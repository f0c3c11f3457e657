package daemon

// Dispatcher runs functions on the thread that owns the scheduler and its
// surfaces. The GTK implementation lives in the display package.
type Dispatcher interface {
	Post(fn func())
}

// InlineDispatcher runs functions immediately on the caller's goroutine.
type InlineDispatcher struct{}

// Post runs fn.
func (InlineDispatcher) Post(fn func()) { fn() }

// Call runs fn on d and waits for its result.
func Call[T any](d Dispatcher, fn func() T) T {
	result := make(chan T, 1)
	d.Post(func() { result <- fn() })
	return <-result
}

// Run runs fn on d and waits for it to return.
func Run(d Dispatcher, fn func()) {
	Call(d, func() struct{} {
		fn()
		return struct{}{}
	})
}
