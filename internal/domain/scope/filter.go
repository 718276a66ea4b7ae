package scope

import "errors"

// Filter is the geographic selection supplied with a query. Level and
// LocationID are the legacy single-level form of the same selection.
type Filter struct {
	CountyID         *uint
	ConstituencyID   *uint
	WardID           *uint
	PollingStationID *uint

	Level      Level
	LocationID *uint
}

// Scope reduces the filter to a single bound. Legacy level/location_id
// override the matching field; when several fields are set the most
// specific one wins.
func (f Filter) Scope() (Scope, error) {
	fields := map[Level]*uint{
		LevelCounty:         f.CountyID,
		LevelConstituency:   f.ConstituencyID,
		LevelWard:           f.WardID,
		LevelPollingStation: f.PollingStationID,
	}

	if f.Level != "" && f.Level != LevelNational {
		if f.LocationID == nil {
			return Scope{}, errors.New("location_id is required when level is set")
		}
		if _, ok := fields[f.Level]; !ok {
			return Scope{}, errors.New("invalid level")
		}
		fields[f.Level] = f.LocationID
	}

	for _, level := range []Level{LevelPollingStation, LevelWard, LevelConstituency, LevelCounty} {
		if id := fields[level]; id != nil {
			return At(level, *id), nil
		}
	}
	return National(), nil
}

// Narrow combines the role-derived scope with the caller's filter. Callers
// bound by their role always get that bound back: a requested area outside
// it is ignored rather than reported. Unrestricted callers get what they
// asked for.
func Narrow(resolved Scope, f Filter) (Scope, error) {
	requested, err := f.Scope()
	if err != nil {
		return Scope{}, err
	}
	if resolved.Restricted || resolved.Denied {
		return resolved, nil
	}
	return requested, nil
}
