package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
)

func ptr(v uint) *uint { return &v }

func TestResolve_CandidatePositions(t *testing.T) {
	profile := Caller{
		Role:           RoleCandidate,
		CountyID:       ptr(47),
		ConstituencyID: ptr(42),
		WardID:         ptr(7),
	}

	cases := []struct {
		position candidate.Position
		want     Scope
	}{
		{candidate.PositionMCA, Scope{Level: LevelWard, ID: 7, Restricted: true}},
		{candidate.PositionMP, Scope{Level: LevelConstituency, ID: 42, Restricted: true}},
		{candidate.PositionGovernor, Scope{Level: LevelCounty, ID: 47, Restricted: true}},
		{candidate.PositionSenator, Scope{Level: LevelCounty, ID: 47, Restricted: true}},
		{candidate.PositionWomenRep, Scope{Level: LevelCounty, ID: 47, Restricted: true}},
		{candidate.PositionPresident, National()},
	}

	for _, tc := range cases {
		t.Run(string(tc.position), func(t *testing.T) {
			caller := profile
			caller.Position = tc.position
			assert.Equal(t, tc.want, Resolve(caller))
		})
	}
}

func TestResolve_MPBindsConstituencyOnly(t *testing.T) {
	s := Resolve(Caller{Role: RoleCandidate, Position: candidate.PositionMP, ConstituencyID: ptr(42), CountyID: ptr(1)})

	require.NotNil(t, s.ConstituencyID())
	assert.Equal(t, uint(42), *s.ConstituencyID())
	assert.Nil(t, s.CountyID())
	assert.Nil(t, s.WardID())
	assert.Nil(t, s.PollingStationID())
}

func TestResolve_MissingProfileLocationIsDenied(t *testing.T) {
	cases := []Caller{
		{Role: RoleCandidate, Position: candidate.PositionMP, CountyID: ptr(3)},
		{Role: RoleCandidate, Position: candidate.PositionMCA, ConstituencyID: ptr(3)},
		{Role: RoleCandidate, Position: candidate.PositionGovernor},
		{Role: RoleCandidate, Position: candidate.PositionSenator, CountyID: ptr(0)},
		{Role: RoleCandidate, Position: "chief"},
	}

	for _, caller := range cases {
		s := Resolve(caller)
		assert.True(t, s.Denied, "caller %+v", caller)
		assert.False(t, s.IsNational())
		assert.Nil(t, s.CountyID())
		assert.Nil(t, s.ConstituencyID())
		assert.Nil(t, s.WardID())
	}
}

func TestResolve_NonCandidatesUnrestricted(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleAgent, RoleObserver, RolePublic, ""} {
		s := Resolve(Caller{Role: role, Position: candidate.PositionMCA, WardID: ptr(9)})
		assert.True(t, s.IsNational(), "role %q", role)
		assert.False(t, s.Restricted)
	}
}

func TestFilter_Scope(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   Scope
	}{
		{"empty", Filter{}, National()},
		{"county", Filter{CountyID: ptr(1)}, At(LevelCounty, 1)},
		{"most specific wins", Filter{CountyID: ptr(1), WardID: ptr(5)}, At(LevelWard, 5)},
		{"station", Filter{WardID: ptr(5), PollingStationID: ptr(77)}, At(LevelPollingStation, 77)},
		{"legacy", Filter{Level: LevelConstituency, LocationID: ptr(42)}, At(LevelConstituency, 42)},
		{"legacy overrides field", Filter{ConstituencyID: ptr(3), Level: LevelConstituency, LocationID: ptr(42)}, At(LevelConstituency, 42)},
		{"legacy national", Filter{Level: LevelNational}, National()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.filter.Scope()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilter_ScopeRejectsIncompleteLegacyParams(t *testing.T) {
	_, err := Filter{Level: LevelWard}.Scope()
	assert.Error(t, err)

	_, err = Filter{Level: "galaxy", LocationID: ptr(1)}.Scope()
	assert.Error(t, err)
}

func TestNarrow_CandidateCannotWidenScope(t *testing.T) {
	resolved := Resolve(Caller{Role: RoleCandidate, Position: candidate.PositionMP, ConstituencyID: ptr(42)})

	got, err := Narrow(resolved, Filter{WardID: ptr(999)})
	require.NoError(t, err)
	assert.Equal(t, resolved, got)

	got, err = Narrow(resolved, Filter{})
	require.NoError(t, err)
	assert.Equal(t, resolved, got)

	got, err = Narrow(resolved, Filter{Level: LevelCounty, LocationID: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, uint(42), *got.ConstituencyID())
}

func TestNarrow_DeniedStaysDenied(t *testing.T) {
	got, err := Narrow(Deny(), Filter{CountyID: ptr(1)})
	require.NoError(t, err)
	assert.True(t, got.Denied)
}

func TestNarrow_UnrestrictedUsesFilter(t *testing.T) {
	got, err := Narrow(National(), Filter{WardID: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, At(LevelWard, 12), got)

	_, err = Narrow(National(), Filter{Level: LevelWard})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("station")
	require.NoError(t, err)
	assert.Equal(t, LevelPollingStation, l)

	_, err = ParseLevel("planet")
	assert.Error(t, err)
}
