package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

func TestSetStatus_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reviewer := admin()
	caller := agent()
	sub := e.submit(t, e.onSite(caller, 1000, amosID, submission.TypePrimary))
	e.record(t, caller, sub.SubmissionID, "mp", counts(500, 400, 390, 10,
		line("Amos Otieno", "Lake Party", 200), line("Beth Wanjiru", "Hill Alliance", 190)))

	flagged, err := e.svc.Reviews.SetStatus(ctx, reviewer, sub.SubmissionID, "flagged")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusFlagged, flagged.Status)
	assert.Nil(t, flagged.VerifiedAt)

	verified, err := e.svc.Reviews.SetStatus(ctx, reviewer, sub.SubmissionID, "verified")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)

	stored := e.load(t, sub.SubmissionID)
	assert.Equal(t, submission.StatusVerified, stored.Status)
	assert.NotNil(t, stored.VerifiedAt)

	_, err = e.svc.Reviews.SetStatus(ctx, reviewer, sub.SubmissionID, "rejected")
	assert.ErrorIs(t, err, submission.ErrInvalidTransition)
}

func TestSetStatus_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.submit(t, e.onSite(agent(), 1000, amosID, submission.TypePrimary))

	_, err := e.svc.Reviews.SetStatus(ctx, agent(), sub.SubmissionID, "verified")
	assert.ErrorIs(t, err, submission.ErrForbidden)

	_, err = e.svc.Reviews.SetStatus(ctx, admin(), sub.SubmissionID, "approved")
	assert.True(t, validation.IsInputError(err))

	_, err = e.svc.Reviews.SetStatus(ctx, admin(), sub.SubmissionID, "pending")
	assert.ErrorIs(t, err, submission.ErrInvalidTransition)

	_, err = e.svc.Reviews.SetStatus(ctx, admin(), uuid.New(), "verified")
	assert.ErrorIs(t, err, submission.ErrSubmissionNotFound)

	assert.Equal(t, submission.StatusPending, e.load(t, sub.SubmissionID).Status)
}

func TestSetStatus_VerifyRequiresResult(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	caller := agent()
	sub := e.submit(t, e.onSite(caller, 1000, amosID, submission.TypePrimary))

	_, err := e.svc.Reviews.SetStatus(ctx, admin(), sub.SubmissionID, "verified")
	assert.ErrorIs(t, err, submission.ErrNoResult)
	assert.Equal(t, submission.StatusPending, e.load(t, sub.SubmissionID).Status)

	// Flagging and rejecting need no result.
	_, err = e.svc.Reviews.SetStatus(ctx, admin(), sub.SubmissionID, "flagged")
	require.NoError(t, err)

	e.record(t, caller, sub.SubmissionID, "mp", counts(500, 400, 400, 0, line("Amos Otieno", "Lake Party", 400)))
	verified, err := e.svc.Reviews.SetStatus(ctx, admin(), sub.SubmissionID, "verified")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusVerified, verified.Status)
}
