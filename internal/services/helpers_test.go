package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/storage/objectstore"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/storage/testdb"
)

// Candidates seeded by newEnv.
const (
	amosID uint = 1 // mp, constituency 10
	bethID uint = 2 // mp, constituency 10
	cateID uint = 3 // mca, ward 100
	deskID uint = 4 // system user
)

type env struct {
	db        *gorm.DB
	repos     *postgres.Container
	photos    *objectstore.MemoryStore
	svc       *Services
	limits    UploadLimits
	stationAt map[uint][2]float64
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testdb.Open(t)
	geo := testdb.SeedGeography(t, db)

	testdb.SeedCandidate(t, db, candidate.Candidate{ID: amosID, Name: "Amos Otieno", PartyName: "Lake Party",
		Position: candidate.PositionMP, CountyID: uintPtr(1), ConstituencyID: uintPtr(10)})
	testdb.SeedCandidate(t, db, candidate.Candidate{ID: bethID, Name: "Beth Wanjiru", PartyName: "Hill Alliance",
		Position: candidate.PositionMP, CountyID: uintPtr(1), ConstituencyID: uintPtr(10)})
	testdb.SeedCandidate(t, db, candidate.Candidate{ID: cateID, Name: "Cate Muthoni", PartyName: "Lake Party",
		Position: candidate.PositionMCA, CountyID: uintPtr(1), ConstituencyID: uintPtr(10), WardID: uintPtr(100)})
	testdb.SeedCandidate(t, db, candidate.Candidate{ID: deskID, Name: "Operations Desk",
		Position: candidate.PositionMP, ConstituencyID: uintPtr(10), IsSystemUser: true})

	e := &env{
		db:        db,
		repos:     postgres.NewContainerWithDB(db),
		photos:    objectstore.NewMemoryStore(),
		limits:    UploadLimits{MaxPhotos: 4, MaxFileSize: 1024},
		stationAt: make(map[uint][2]float64),
	}
	for _, st := range geo.Stations {
		if st.Latitude != nil {
			e.stationAt[st.ID] = [2]float64{*st.Latitude, *st.Longitude}
		}
	}
	e.svc = New(e.repos, e.photos, verification.DefaultConfig(), e.limits, nil)
	return e
}

func uintPtr(v uint) *uint { return &v }

func agent() scope.Caller {
	return scope.Caller{UserID: uuid.New(), Role: scope.RoleAgent}
}

func admin() scope.Caller {
	return scope.Caller{UserID: uuid.New(), Role: scope.RoleAdmin}
}

func photo(photoType, contentType, data string) PhotoUpload {
	return PhotoUpload{
		PhotoType:   photoType,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(data)), nil
		},
	}
}

func requiredPhotos() []PhotoUpload {
	return []PhotoUpload{
		photo(verification.PhotoFullForm, "image/jpeg", "form"),
		photo(verification.PhotoSignature, "image/png", "signature"),
	}
}

// onSite builds a request whose GPS fix is the station's registered location.
func (e *env) onSite(caller scope.Caller, stationID, candidateID uint, kind submission.Type) SubmitRequest {
	req := SubmitRequest{
		Caller:           caller,
		PollingStationID: stationID,
		CandidateID:      candidateID,
		SubmissionType:   kind,
		Photos:           requiredPhotos(),
	}
	if at, ok := e.stationAt[stationID]; ok {
		lat, lng := at[0], at[1]
		req.SubmittedLat = &lat
		req.SubmittedLng = &lng
	}
	return req
}

func (e *env) submit(t *testing.T, req SubmitRequest) *SubmitOutcome {
	t.Helper()
	out, err := e.svc.Submissions.Submit(context.Background(), req)
	require.NoError(t, err)
	return out
}

func (e *env) record(t *testing.T, caller scope.Caller, id uuid.UUID, position string, c verification.Counts) *RecordOutcome {
	t.Helper()
	out, err := e.svc.Results.Record(context.Background(), RecordRequest{
		Caller:       caller,
		SubmissionID: id,
		Position:     position,
		Counts:       c,
	})
	require.NoError(t, err)
	return out
}

func (e *env) load(t *testing.T, id uuid.UUID) *submission.Submission {
	t.Helper()
	s, err := e.repos.Submissions().GetByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func counts(registered, cast, valid, rejected int, lines ...verification.CandidateCount) verification.Counts {
	return verification.Counts{
		RegisteredVoters: registered,
		TotalVotesCast:   cast,
		ValidVotes:       valid,
		RejectedVotes:    rejected,
		Candidates:       lines,
	}
}

func line(name, party string, votes int) verification.CandidateCount {
	return verification.CandidateCount{CandidateName: name, PartyName: party, Votes: votes}
}

func hoursAgo(h int) *time.Time {
	t := time.Now().UTC().Add(-time.Duration(h) * time.Hour)
	return &t
}

// failingStore accepts a fixed number of uploads and then fails.
type failingStore struct {
	*objectstore.MemoryStore
	accept int
}

func (s *failingStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.accept == 0 {
		return errors.New("bucket unavailable")
	}
	s.accept--
	return s.MemoryStore.Put(ctx, key, body, size, contentType)
}
