package driven

// EventLoop runs callbacks one at a time on a single logical thread.
// Documents and coordinator state are only touched from loop callbacks.
type EventLoop interface {
	// Post queues fn to run on the loop after already queued tasks.
	Post(fn func())

	// RequestFrame queues fn to run at the next frame opportunity.
	// Callbacks requested while a frame is running go to the following
	// frame.
	RequestFrame(fn func())
}
