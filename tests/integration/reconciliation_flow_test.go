package integration

import (
	"context"
	"strings"
	"testing"

	"homeport-backend/application/ports"
	"homeport-backend/application/services"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/infrastructure/di"
	messagingmemory "homeport-backend/infrastructure/messaging/memory"
	"homeport-backend/infrastructure/persistence/memory"
	storagememory "homeport-backend/infrastructure/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// env wires the full application layer over in-memory infrastructure, the
// same composition the dev-mode container uses.
type env struct {
	records      *memory.RecordRepository
	notifier     *messagingmemory.Notifier
	orchestrator *services.ProfileOrchestrator
	attachments  *services.AttachmentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()

	records := memory.NewRecordRepository()
	drafts := services.NewDraftStore(memory.NewDraftTierStore(), memory.NewDraftTierStore(), logger)
	notifier := messagingmemory.NewNotifier()
	linker := services.NewIdentityLinker(records, drafts, notifier, nil, logger)
	orchestrator := services.NewProfileOrchestrator(records, drafts, linker, notifier, di.NewSessionCache(), nil, nil, logger)
	attachments := services.NewAttachmentService(storagememory.NewAttachmentStore(), nil, nil, logger)

	return &env{
		records:      records,
		notifier:     notifier,
		orchestrator: orchestrator,
		attachments:  attachments,
	}
}

func principal(t *testing.T, id string) valueobjects.Principal {
	t.Helper()
	p, err := valueobjects.NewPrincipal(id, true, valueobjects.RoleCustomer)
	require.NoError(t, err)
	return p
}

func intake(t *testing.T, e *env, clientID string, tier ports.DraftTier) valueobjects.RecordID {
	t.Helper()
	record, err := e.orchestrator.SubmitIntake(context.Background(), valueobjects.NewFieldSetFrom(map[string]interface{}{
		"property_type": "apartment",
		"city":          "Utrecht",
	}), clientID, tier)
	require.NoError(t, err)
	return record.ID()
}

// The happy path: an anonymous questionnaire submission, a sign-up, then an
// edit that is saved and finally submitted for review.
func TestIntakeToReviewFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := principal(t, "principal-a")

	submittedID := intake(t, e, "client-1", ports.TierSession)

	resolved, err := e.orchestrator.ResolveProfile(ctx, owner, "client-1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.True(t, resolved.ID().Equals(submittedID))
	assert.Equal(t, owner.ID(), resolved.OwnerID())

	session, err := e.orchestrator.Session(ctx, owner, "client-1")
	require.NoError(t, err)
	require.NoError(t, session.StartEdit(nil))
	require.NoError(t, session.Mutate("rooms", 3))

	saved, err := session.Save(ctx)
	require.NoError(t, err)
	rooms, _ := saved.Fields().Get("rooms")
	assert.Equal(t, 3, rooms)

	submitted, err := session.SubmitForReview(ctx)
	require.NoError(t, err)
	assert.True(t, submitted.Completed())

	// The repository agrees with the session's view
	stored, err := e.records.FetchByID(ctx, submittedID)
	require.NoError(t, err)
	assert.True(t, stored.Completed())
	storedRooms, _ := stored.Fields().Get("rooms")
	assert.Equal(t, 3, storedRooms)

	eventTypes := make([]string, 0)
	for _, event := range e.notifier.Published() {
		eventTypes = append(eventTypes, event.GetEventType())
	}
	assert.Contains(t, eventTypes, "record.owner_bound")
	assert.Contains(t, eventTypes, "record.completed")
}

// The durable reference survives what the session reference is for: a login
// redirect that lands in a fresh browser session.
func TestDurableReferenceSurvivesRedirect(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	durableID := intake(t, e, "client-1", ports.TierDurable)
	intake(t, e, "client-1", ports.TierSession)

	resolved, err := e.orchestrator.ResolveProfile(ctx, principal(t, "principal-a"), "client-1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.True(t, resolved.ID().Equals(durableID))
}

// Two browser tabs racing through sign-up must converge on one owner and one
// record, with no error surfaced to either tab.
func TestConcurrentSignupTabs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := principal(t, "principal-a")

	submittedID := intake(t, e, "client-1", ports.TierSession)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := e.orchestrator.ResolveProfile(ctx, owner, "client-1")
			results <- err
		}()
	}
	require.NoError(t, <-results)
	require.NoError(t, <-results)

	assert.Equal(t, 1, e.records.BindSuccesses())

	stored, err := e.records.FetchByID(ctx, submittedID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID(), stored.OwnerID())
}

// A returning principal with no pending draft gets their newest record back,
// not nothing and not someone else's.
func TestReturningPrincipal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := principal(t, "principal-a")

	intake(t, e, "client-1", ports.TierSession)
	first, err := e.orchestrator.ResolveProfile(ctx, owner, "client-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// New device, no draft reference under this client id
	again, err := e.orchestrator.ResolveProfile(ctx, owner, "client-9")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.True(t, again.ID().Equals(first.ID()))

	other, err := e.orchestrator.ResolveProfile(ctx, principal(t, "principal-b"), "client-9")
	require.NoError(t, err)
	assert.Nil(t, other)
}

// An abandoned edit leaves no trace once the session is dropped and rebuilt.
func TestAbandonedEditIsDiscarded(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := principal(t, "principal-a")

	intake(t, e, "client-1", ports.TierSession)

	session, err := e.orchestrator.Session(ctx, owner, "client-1")
	require.NoError(t, err)
	require.NoError(t, session.StartEdit(nil))
	require.NoError(t, session.Mutate("city", "Nowhere"))

	e.orchestrator.DropSession(ctx, owner)

	rebuilt, err := e.orchestrator.Session(ctx, owner, "client-1")
	require.NoError(t, err)
	assert.Equal(t, services.StatusViewing, rebuilt.Status())
	city, _ := rebuilt.Committed().Fields().Get("city")
	assert.Equal(t, "Utrecht", city)
}

// Attachments live in the principal's namespace and ride along unchanged
// through record edits.
func TestAttachmentsAcrossEdits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := principal(t, "principal-a")

	intake(t, e, "client-1", ports.TierSession)
	_, err := e.orchestrator.ResolveProfile(ctx, owner, "client-1")
	require.NoError(t, err)

	_, err = e.attachments.Upload(ctx, owner.ID(), "deed.pdf", strings.NewReader("deed"), 4, "application/pdf")
	require.NoError(t, err)

	session, err := e.orchestrator.Session(ctx, owner, "client-1")
	require.NoError(t, err)
	require.NoError(t, session.StartEdit(nil))
	require.NoError(t, session.Mutate("city", "Leiden"))
	_, err = session.Save(ctx)
	require.NoError(t, err)

	files, err := e.attachments.List(ctx, owner.ID())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "deed.pdf", files[0].Name)

	url, err := e.attachments.ResolveURL(ctx, owner.ID(), "deed.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}
