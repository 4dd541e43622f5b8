package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
)

var (
	// ErrBriefNotFound is returned when a transition names a brief that does not exist
	ErrBriefNotFound = errors.New("brief not found")
	// ErrConceptNotFound is returned when a transition names a concept that does not exist
	ErrConceptNotFound = errors.New("concept not found")
)

// Workflow applies the brief → concept → sales transitions
type Workflow struct {
	db     *db.Database
	events Publisher
}

// NewWorkflow creates a workflow service. events may be nil.
func NewWorkflow(database *db.Database, events Publisher) *Workflow {
	if events == nil {
		events = NewFanout()
	}
	return &Workflow{db: database, events: events}
}

// RequireBrief returns ErrBriefNotFound unless the brief exists
func (w *Workflow) RequireBrief(ctx context.Context, id int64) error {
	ok, err := w.db.BriefExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBriefNotFound
	}
	return nil
}

// RequireConcept returns ErrConceptNotFound unless the concept exists
func (w *Workflow) RequireConcept(ctx context.Context, id int64) error {
	ok, err := w.db.ConceptExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConceptNotFound
	}
	return nil
}

// CreateBrief inserts a Draft brief authored by actor
func (w *Workflow) CreateBrief(ctx context.Context, b *models.Brief, actor string) (int64, error) {
	b.Status = models.BriefStatusDraft
	b.CreatedBy = actor
	id, err := w.db.CreateBrief(ctx, b)
	if err != nil {
		return 0, err
	}
	w.publish(ctx, Event{Kind: EventBriefCreated, BriefID: id, Actor: actor})
	return id, nil
}

// SubmitBrief moves a brief to Submitted
func (w *Workflow) SubmitBrief(ctx context.Context, id int64, actor string) error {
	if err := w.db.SetBriefStatus(ctx, id, models.BriefStatusSubmitted); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrBriefNotFound
		}
		return err
	}
	w.publish(ctx, Event{Kind: EventBriefSubmitted, BriefID: id, Actor: actor})
	return nil
}

// CreateConcept inserts a Ready_for_PM concept and forces its brief to Submitted,
// both in one transaction.
func (w *Workflow) CreateConcept(ctx context.Context, c *models.Concept, actor string) (int64, error) {
	c.Status = models.ConceptStatusReadyForPM
	c.CreatedBy = actor

	var id int64
	err := w.db.WithTx(ctx, func(q *db.Queries) error {
		ok, err := q.BriefExists(ctx, c.BriefID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBriefNotFound
		}
		if id, err = q.CreateConcept(ctx, c); err != nil {
			return err
		}
		return q.SetBriefStatus(ctx, c.BriefID, models.BriefStatusSubmitted)
	})
	if err != nil {
		return 0, err
	}
	w.publish(ctx, Event{Kind: EventConceptCreated, BriefID: c.BriefID, ConceptID: id, Actor: actor})
	return id, nil
}

// FinalizeConcept appends a sales info row and moves the concept to Ready_for_Sales in
// one transaction. The concept's current status is not checked, so repeated finalizes
// append further rows and the newest one wins.
func (w *Workflow) FinalizeConcept(ctx context.Context, s *models.SalesInfo, actor string) (int64, error) {
	s.Status = models.SalesStatusPublished

	var id int64
	err := w.db.WithTx(ctx, func(q *db.Queries) error {
		ok, err := q.ConceptExists(ctx, s.ConceptID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConceptNotFound
		}
		if id, err = q.CreateSalesInfo(ctx, s); err != nil {
			return err
		}
		return q.SetConceptStatus(ctx, s.ConceptID, models.ConceptStatusReadyForSales)
	})
	if err != nil {
		return 0, err
	}
	w.publish(ctx, Event{Kind: EventConceptFinalized, ConceptID: s.ConceptID, SalesID: id, Actor: actor})
	return id, nil
}

// AddComment attaches a comment to an existing brief or concept
func (w *Workflow) AddComment(ctx context.Context, target models.CommentTarget, entityID int64, author, body string) (int64, error) {
	var id int64
	err := w.db.WithTx(ctx, func(q *db.Queries) error {
		var (
			ok       bool
			err      error
			notFound error
		)
		switch target {
		case models.CommentTargetBrief:
			ok, err = q.BriefExists(ctx, entityID)
			notFound = ErrBriefNotFound
		case models.CommentTargetConcept:
			ok, err = q.ConceptExists(ctx, entityID)
			notFound = ErrConceptNotFound
		default:
			return fmt.Errorf("unknown comment target %q", target)
		}
		if err != nil {
			return err
		}
		if !ok {
			return notFound
		}
		id, err = q.CreateComment(ctx, &models.Comment{EntityType: target, EntityID: entityID, Author: author, Body: body})
		return err
	})
	return id, err
}

func (w *Workflow) publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	_ = w.events.Publish(ctx, ev)
}
