package router

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RegionRequiredMessage is shown on the travel screen after a redirect.
const RegionRequiredMessage = "You need to travel to a region first"

type Session interface {
	IsAuthenticated(ctx context.Context) bool
}

// RegionSource reports the cached region and can reload it.
type RegionSource interface {
	IsInRegion(regionID string) bool
	FetchCurrentRegion(ctx context.Context) error
}

// Decision is the outcome of a navigation. An empty Redirect means the
// route may be entered.
type Decision struct {
	Route    Route
	Params   map[string]string
	Title    string
	Redirect string
}

func (d Decision) Allowed() bool { return d.Redirect == "" }

type Guard struct {
	session Session
	regions RegionSource
	log     zerolog.Logger
	group   singleflight.Group
}

func NewGuard(s Session, r RegionSource, log zerolog.Logger) *Guard {
	return &Guard{session: s, regions: r, log: log}
}

// Resolve decides where a navigation to target ends up. Unknown paths go
// home.
func (g *Guard) Resolve(ctx context.Context, target string) Decision {
	u, err := url.Parse(target)
	if err != nil {
		return g.redirect(PathHome)
	}
	route, params, ok := Match(u.Path)
	if !ok {
		return g.redirect(PathHome)
	}
	d := Decision{Route: route, Params: params, Title: route.Title}

	authed := g.session.IsAuthenticated(ctx)
	switch {
	case route.RequiresAuth && !authed:
		d.Redirect = PathLogin + "?" + url.Values{"redirect": {target}}.Encode()
		return d
	case route.RequiresGuest && authed:
		d.Redirect = PathHome
		return d
	}

	if route.RequiresRegion && !g.hasRegion(ctx) {
		q := url.Values{
			"returnTo": {target},
			"message":  {RegionRequiredMessage},
		}
		d.Redirect = PathTravel + "?" + q.Encode()
	}
	return d
}

// hasRegion checks the cache and otherwise loads the current region once
// for all concurrent navigations.
func (g *Guard) hasRegion(ctx context.Context) bool {
	if g.regions.IsInRegion("") {
		return true
	}
	_, err, shared := g.group.Do("current-region", func() (any, error) {
		return nil, g.regions.FetchCurrentRegion(ctx)
	})
	if err != nil {
		g.log.Warn().Err(err).Bool("shared", shared).Msg("load current region failed")
		return false
	}
	return g.regions.IsInRegion("")
}

func (g *Guard) redirect(to string) Decision {
	r, _, _ := Match(to)
	return Decision{Route: r, Title: r.Title, Redirect: to}
}
