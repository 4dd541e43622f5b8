package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestWorkflow(t *testing.T, sinks ...Publisher) (*Workflow, *db.Database) {
	t.Helper()
	database, err := db.NewDatabaseWithRetry(db.Config{
		Driver: db.DialectSQLite,
		Path:   filepath.Join(t.TempDir(), "plm.db"),
	}, 1, time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate(context.Background()))
	return NewWorkflow(database, NewFanout(sinks...)), database
}

func TestWorkflowHappyPath(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	wf, database := newTestWorkflow(t, rec)

	mrp := 1499.0
	briefID, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-001", Season: "SS25", TargetMRP: &mrp, CreatedBy: "ignored"}, "pm")
	require.NoError(t, err)

	b, err := database.GetBrief(ctx, briefID)
	require.NoError(t, err)
	assert.Equal(t, models.BriefStatusDraft, b.Status)
	assert.Equal(t, "pm", b.CreatedBy)

	conceptID, err := wf.CreateConcept(ctx, &models.Concept{BriefID: briefID, NDNo: "ND-01"}, "npd")
	require.NoError(t, err)

	b, err = database.GetBrief(ctx, briefID)
	require.NoError(t, err)
	assert.Equal(t, models.BriefStatusSubmitted, b.Status, "creating a concept forces the brief to Submitted")

	c, err := database.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	assert.Equal(t, models.ConceptStatusReadyForPM, c.Status)

	margin := 35.0
	salesID, err := wf.FinalizeConcept(ctx, &models.SalesInfo{ConceptID: conceptID, MarginPct: &margin}, "pmfinal")
	require.NoError(t, err)

	c, err = database.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	assert.Equal(t, models.ConceptStatusReadyForSales, c.Status)

	s, err := database.LatestSalesInfo(ctx, conceptID)
	require.NoError(t, err)
	assert.Equal(t, salesID, s.ID)
	assert.Equal(t, models.SalesStatusPublished, s.Status)

	assert.Equal(t, []EventKind{EventBriefCreated, EventConceptCreated, EventConceptFinalized}, rec.kinds())
	assert.Equal(t, "npd", rec.events[1].Actor)
	assert.Equal(t, briefID, rec.events[1].BriefID)
	assert.False(t, rec.events[2].At.IsZero())
}

func TestCreateConceptMissingBriefWritesNothing(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	wf, database := newTestWorkflow(t, rec)

	_, err := wf.CreateConcept(ctx, &models.Concept{BriefID: 42, NDNo: "ND-404"}, "npd")
	assert.ErrorIs(t, err, ErrBriefNotFound)

	counts, err := database.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Concepts)
	assert.Empty(t, rec.events)
}

func TestFinalizeTwiceAppendsRows(t *testing.T) {
	ctx := context.Background()
	wf, database := newTestWorkflow(t)

	briefID, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-002"}, "pm")
	require.NoError(t, err)
	conceptID, err := wf.CreateConcept(ctx, &models.Concept{BriefID: briefID}, "npd")
	require.NoError(t, err)

	first, err := wf.FinalizeConcept(ctx, &models.SalesInfo{ConceptID: conceptID, SellingStory: "v1"}, "pmfinal")
	require.NoError(t, err)
	second, err := wf.FinalizeConcept(ctx, &models.SalesInfo{ConceptID: conceptID, SellingStory: "v2"}, "admin")
	require.NoError(t, err)
	assert.Greater(t, second, first)

	rows, err := database.ListSalesInfo(ctx, conceptID, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	latest, err := database.LatestSalesInfo(ctx, conceptID)
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.SellingStory)
}

func TestFinalizeMissingConcept(t *testing.T) {
	ctx := context.Background()
	wf, database := newTestWorkflow(t)

	_, err := wf.FinalizeConcept(ctx, &models.SalesInfo{ConceptID: 9}, "pmfinal")
	assert.ErrorIs(t, err, ErrConceptNotFound)

	counts, err := database.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.SalesInfo)
}

func TestSubmitBrief(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	wf, database := newTestWorkflow(t, rec)

	id, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-003"}, "pm")
	require.NoError(t, err)
	require.NoError(t, wf.SubmitBrief(ctx, id, "pm"))

	b, err := database.GetBrief(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.BriefStatusSubmitted, b.Status)

	assert.ErrorIs(t, wf.SubmitBrief(ctx, id+1, "pm"), ErrBriefNotFound)
	assert.Equal(t, []EventKind{EventBriefCreated, EventBriefSubmitted}, rec.kinds())
}

func TestTransitionsRefreshUpdatedAtOnly(t *testing.T) {
	ctx := context.Background()
	wf, database := newTestWorkflow(t)

	briefID, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-008"}, "pm")
	require.NoError(t, err)
	created, err := database.GetBrief(ctx, briefID)
	require.NoError(t, err)
	assert.True(t, created.UpdatedAt.Equal(created.CreatedAt))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, wf.SubmitBrief(ctx, briefID, "pm"))
	submitted, err := database.GetBrief(ctx, briefID)
	require.NoError(t, err)
	assert.True(t, submitted.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, submitted.UpdatedAt.After(created.UpdatedAt))

	time.Sleep(5 * time.Millisecond)
	conceptID, err := wf.CreateConcept(ctx, &models.Concept{BriefID: briefID, NDNo: "ND-08"}, "npd")
	require.NoError(t, err)
	answered, err := database.GetBrief(ctx, briefID)
	require.NoError(t, err)
	assert.True(t, answered.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, answered.UpdatedAt.After(submitted.UpdatedAt), "concept creation rewrites the brief status")

	ready, err := database.GetConcept(ctx, conceptID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = wf.FinalizeConcept(ctx, &models.SalesInfo{ConceptID: conceptID}, "pmfinal")
	require.NoError(t, err)
	finalized, err := database.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	assert.True(t, finalized.CreatedAt.Equal(ready.CreatedAt))
	assert.True(t, finalized.UpdatedAt.After(ready.UpdatedAt))
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	wf, database := newTestWorkflow(t)

	id, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-004"}, "pm")
	require.NoError(t, err)

	_, err = wf.AddComment(ctx, models.CommentTargetBrief, id, "sales", "needs a wider fit")
	require.NoError(t, err)
	_, err = wf.AddComment(ctx, models.CommentTargetConcept, 77, "sales", "lost")
	assert.ErrorIs(t, err, ErrConceptNotFound)

	comments, err := database.ListComments(ctx, models.CommentTargetBrief, id)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "sales", comments[0].Author)
}

func TestFanoutSwallowsSinkErrors(t *testing.T) {
	failing := &recorder{err: errors.New("unavailable")}
	ok := &recorder{}
	f := NewFanout(failing, nil, ok)
	assert.Equal(t, 2, f.Len())

	require.NoError(t, f.Publish(context.Background(), Event{Kind: EventBriefCreated}))
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
}

func TestTransitionSucceedsWhenSinkFails(t *testing.T) {
	ctx := context.Background()
	wf, database := newTestWorkflow(t, &recorder{err: errors.New("down")})

	id, err := wf.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-005"}, "pm")
	require.NoError(t, err)
	_, err = database.GetBrief(ctx, id)
	assert.NoError(t, err)
}

type fakeSES struct{ inputs []*sesv2.SendEmailInput }

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{}, nil
}

func TestEmailServiceMailsNextRole(t *testing.T) {
	client := &fakeSES{}
	svc := NewEmailServiceWithClient(client, "plm@example.com", map[models.UserRole][]string{
		models.RoleNPD:   {"npd@example.com"},
		models.RoleSales: {"sales@example.com", "lead@example.com"},
	})
	ctx := context.Background()

	require.NoError(t, svc.Publish(ctx, Event{Kind: EventBriefCreated, BriefID: 1}))
	require.NoError(t, svc.Publish(ctx, Event{Kind: EventBriefSubmitted, BriefID: 1, Actor: "pm"}))
	require.NoError(t, svc.Publish(ctx, Event{Kind: EventConceptCreated, ConceptID: 2}))
	require.NoError(t, svc.Publish(ctx, Event{Kind: EventConceptFinalized, ConceptID: 2}))

	require.Len(t, client.inputs, 2)
	assert.Equal(t, []string{"npd@example.com"}, client.inputs[0].Destination.ToAddresses)
	assert.Contains(t, aws.ToString(client.inputs[0].Content.Simple.Subject.Data), "brief #1")
	assert.Equal(t, []string{"sales@example.com", "lead@example.com"}, client.inputs[1].Destination.ToAddresses)
	assert.Equal(t, "plm@example.com", aws.ToString(client.inputs[1].FromEmailAddress))
}

type fakeSNS struct{ inputs []*sns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, nil
}

func TestTopicServicePublishesJSON(t *testing.T) {
	client := &fakeSNS{}
	svc := NewTopicServiceWithClient(client, "arn:aws:sns:eu-central-1:123:plm")

	require.NoError(t, svc.Publish(context.Background(), Event{Kind: EventConceptCreated, BriefID: 3, ConceptID: 5, Actor: "npd"}))
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:eu-central-1:123:plm", aws.ToString(in.TopicArn))
	assert.Equal(t, "concept_created", aws.ToString(in.MessageAttributes["kind"].StringValue))

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &ev))
	assert.Equal(t, int64(5), ev.ConceptID)
	assert.Equal(t, "npd", ev.Actor)
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsServiceCountsTransitions(t *testing.T) {
	client := &fakeCloudWatch{}
	svc := NewMetricsServiceWithClient(client, "")

	require.NoError(t, svc.Publish(context.Background(), Event{Kind: EventConceptFinalized, At: time.Now()}))
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, DefaultMetricNamespace, aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 1)
	assert.Equal(t, "Transitions", aws.ToString(in.MetricData[0].MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(in.MetricData[0].Value))
	assert.Equal(t, "concept_finalized", aws.ToString(in.MetricData[0].Dimensions[0].Value))
}
