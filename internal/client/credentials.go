package client

// Credentials supplies the bearer token attached to every request. It is
// injected at construction so sessions stay testable without ambient state.
type Credentials interface {
	AuthToken() string
}

// StaticCredentials is a fixed bearer token, e.g. the one returned by
// POST /auth/login.
type StaticCredentials string

func (s StaticCredentials) AuthToken() string { return string(s) }

// CredentialsFunc adapts a function to the Credentials interface.
type CredentialsFunc func() string

func (f CredentialsFunc) AuthToken() string { return f() }
