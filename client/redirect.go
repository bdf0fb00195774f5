package client

// Redirector sends the user back to the login entry point after the session
// could not be refreshed. The pipeline has already cleared the session when it
// is called; callers should not redirect on their own.
type Redirector interface {
	RedirectToLogin(loginRoute string)
}

// RedirectFunc adapts a function to a Redirector.
type RedirectFunc func(loginRoute string)

func (f RedirectFunc) RedirectToLogin(loginRoute string) {
	f(loginRoute)
}

type noopRedirector struct{}

func (noopRedirector) RedirectToLogin(string) {}
