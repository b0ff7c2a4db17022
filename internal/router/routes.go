// Package router names the client's screens and decides, per navigation,
// whether the session may enter them.
package router

import "strings"

const titleSuffix = " - Criminal Empire"

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathTravel   = "/travel"
)

type Route struct {
	Name           string
	Path           string
	Title          string
	RequiresAuth   bool
	RequiresGuest  bool
	RequiresRegion bool
}

var Routes = []Route{
	{Name: "Home", Path: PathHome, Title: "Dashboard" + titleSuffix, RequiresAuth: true},
	{Name: "Login", Path: PathLogin, Title: "Sign In" + titleSuffix, RequiresGuest: true},
	{Name: "Register", Path: PathRegister, Title: "Sign Up" + titleSuffix, RequiresGuest: true},
	{Name: "Travel", Path: PathTravel, Title: "Travel" + titleSuffix, RequiresAuth: true},
	{Name: "Territory", Path: "/territory", Title: "Territory" + titleSuffix, RequiresAuth: true, RequiresRegion: true},
	{Name: "Operations", Path: "/operations", Title: "Operations" + titleSuffix, RequiresAuth: true, RequiresRegion: true},
	{Name: "Market", Path: "/market", Title: "Market" + titleSuffix, RequiresAuth: true},
	{Name: "Campaigns", Path: "/campaigns", Title: "Campaigns" + titleSuffix, RequiresAuth: true, RequiresRegion: true},
	{Name: "CampaignDetail", Path: "/campaigns/:id", Title: "Campaign" + titleSuffix, RequiresAuth: true, RequiresRegion: true},
	{Name: "Notifications", Path: "/notifications", Title: "Notifications" + titleSuffix, RequiresAuth: true},
	{Name: "Profile", Path: "/profile", Title: "My Profile" + titleSuffix, RequiresAuth: true},
}

// Match finds the route for path and extracts its :params.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, r := range Routes {
		pattern := split(r.Path)
		if len(pattern) != len(segs) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				params[p[1:]] = segs[i]
				continue
			}
			if p != segs[i] {
				matched = false
				break
			}
		}
		if matched {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
