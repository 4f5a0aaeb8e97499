package httpapi

type serverOptions struct {
	addr        string
	logRequests bool
}

// ServerOption is a functional option for configuring the HTTP server.
type ServerOption func(o *serverOptions)

// WithAddr sets the listen address. Defaults to 0.0.0.0:8000.
func WithAddr(addr string) ServerOption {
	return func(o *serverOptions) {
		o.addr = addr
	}
}

// WithLogRequests enables or disables access logging. Enabled by default.
func WithLogRequests(logRequests bool) ServerOption {
	return func(o *serverOptions) {
		o.logRequests = logRequests
	}
}
