package notify

// Notifier delivers operator alerts. Implementations must not block the caller.
type Notifier interface {
	Startup(addr string)
	InternalError(op, url, detail string)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Startup(string)                       {}
func (Nop) InternalError(string, string, string) {}
