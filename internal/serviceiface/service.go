package serviceiface

// Service is a long-running part of the treasury process managed by the
// app manager. Start must not block; Stop must be safe to call twice.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
