package workers

// Worker is a background job started with the application.
type Worker interface {
	Start() error
	// Stop blocks until a running job finishes.
	Stop()
	Name() string
}
