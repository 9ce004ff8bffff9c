package app

import (
	"strings"

	"github.com/Makepad-fr/dod/internal/model"
)

const (
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteDashboard  = "/dashboard"
	RouteProjects   = "/projects"
	RouteNewProject = "/projects/new"
)

// ProjectRoute is the detail route for one project.
func ProjectRoute(id uint) string { return RouteProjects + "/" + model.FormatID(id) }

// ParseProjectRoute extracts the id from /projects/{id}.
func ParseProjectRoute(route string) (uint, bool) {
	rest, ok := strings.CutPrefix(route, RouteProjects+"/")
	if !ok || rest == "new" {
		return 0, false
	}
	id, err := model.ParseID(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsPublic reports whether a route is reachable without a session.
func IsPublic(route string) bool {
	return route == RouteLogin || route == RouteRegister
}

// Navigator moves the hosting shell to a route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Guard applies the route guards: protected routes need a session and the
// auth screens are skipped when one exists.
func Guard(route string, authenticated bool) string {
	switch {
	case IsPublic(route) && authenticated:
		return RouteDashboard
	case !IsPublic(route) && !authenticated:
		return RouteLogin
	}
	return route
}
