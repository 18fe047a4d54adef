package route

import "fmt"

type Route string

const (
	Home      Route = "home"
	Login     Route = "login"
	Register  Route = "register"
	Tasks     Route = "tareas"
	Dashboard Route = "dashboard"
)

var All = []Route{Home, Login, Register, Tasks, Dashboard}

// Private routes need a session.
func (r Route) Private() bool {
	return r == Tasks || r == Dashboard
}

// Public routes are only for signed-out users.
func (r Route) Public() bool {
	return r == Login || r == Register
}

func (r Route) Title() string {
	switch r {
	case Login:
		return "Sign in"
	case Register:
		return "Create account"
	case Tasks:
		return "Tasks"
	case Dashboard:
		return "Dashboard"
	default:
		return "lazytareas"
	}
}

func Parse(value string) (Route, error) {
	for _, r := range All {
		if string(r) == value {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", value)
}

// Resolve returns where a navigation to target actually lands.
func Resolve(target Route, authenticated bool) Route {
	switch {
	case target.Private() && !authenticated:
		return Login
	case target.Public() && authenticated:
		return Tasks
	case target == Home:
		if authenticated {
			return Tasks
		}
		return Login
	default:
		return target
	}
}
