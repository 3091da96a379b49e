package tour

import (
	"net/url"
	"strings"
)

// TourParam is the query parameter that asks a destination page to start a
// tour once it has loaded.
const TourParam = "tour"

// WithTourParam appends ?tour=id to route, keeping any existing query.
func WithTourParam(route, tourID string) string {
	if tourID == "" {
		return route
	}
	u, err := url.Parse(route)
	if err != nil {
		return route
	}
	q := u.Query()
	q.Set(TourParam, tourID)
	u.RawQuery = q.Encode()
	return u.String()
}

// SplitTourParam extracts the tour parameter from route and returns the
// route without it. Destination pages call this once on load and navigate to
// the cleaned route so a re-render cannot restart the tour.
func SplitTourParam(route string) (tourID, cleaned string) {
	u, err := url.Parse(route)
	if err != nil {
		return "", route
	}
	q := u.Query()
	tourID = strings.TrimSpace(q.Get(TourParam))
	if tourID == "" {
		return "", route
	}
	q.Del(TourParam)
	u.RawQuery = q.Encode()
	return tourID, u.String()
}

// RoutePath returns route without query or fragment.
func RoutePath(route string) string {
	u, err := url.Parse(route)
	if err != nil {
		return route
	}
	return u.Path
}
