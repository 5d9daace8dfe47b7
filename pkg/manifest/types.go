package manifest

// HandlerType enumerates the supported handler kinds.
type HandlerType string

const (
	// HandlerInproc binds a route to a handler registered in-process by name.
	HandlerInproc HandlerType = "inproc"
)
