package content

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixalium/backend/internal/store"
)

// RecordStore is the slice of the record store submissions need.
type RecordStore interface {
	Create(ctx context.Context, collection string, v any) (string, error)
	GetAll(ctx context.Context, collection string) ([]store.Record, error)
	Patch(ctx context.Context, path string, fields map[string]any) error
}

type Service struct {
	Store RecordStore
}

// SubmitContact validates and writes one contact message. No retry: on
// failure the caller keeps the form populated and resubmits manually.
func (s *Service) SubmitContact(ctx context.Context, msg ContactMessage) (string, error) {
	if err := requireText("name", msg.Name, 120); err != nil {
		return "", err
	}
	if err := requireEmail("email", msg.Email); err != nil {
		return "", err
	}
	if err := requireText("service", msg.Service, 120); err != nil {
		return "", err
	}
	if err := requireText("message", msg.Message, 5000); err != nil {
		return "", err
	}
	msg.ID = ""
	msg.CreatedAt = time.Now().UTC()
	msg.Read = false
	return s.Store.Create(ctx, ContactsCollection, msg)
}

// SubmitTestimonial creates the testimonial unapproved; it stays out of
// public listings until an admin approves it.
func (s *Service) SubmitTestimonial(ctx context.Context, t Testimonial) (string, error) {
	if err := requireText("name", t.Name, 120); err != nil {
		return "", err
	}
	if err := requireText("content", t.Content, 2000); err != nil {
		return "", err
	}
	if t.Rating < 1 || t.Rating > 5 {
		return "", &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	t.ID = ""
	t.CreatedAt = time.Now().UTC()
	t.Approved = false
	return s.Store.Create(ctx, TestimonialsCollection, t)
}

// SubscribeNewsletter appends a subscriber.
func (s *Service) SubscribeNewsletter(ctx context.Context, email string) (string, error) {
	if err := requireEmail("email", email); err != nil {
		return "", err
	}
	sub := NewsletterSubscriber{
		Email:        strings.TrimSpace(email),
		SubscribedAt: time.Now().UTC(),
	}
	return s.Store.Create(ctx, NewsletterCollection, sub)
}

// Subscribers returns every newsletter subscriber email, in creation order.
func (s *Service) Subscribers(ctx context.Context) ([]string, error) {
	recs, err := s.Store.GetAll(ctx, NewsletterCollection)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		sub, err := store.Decode[NewsletterSubscriber](rec)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("skipping malformed subscriber")
			continue
		}
		out = append(out, sub.Email)
	}
	return out, nil
}

// ApprovedTestimonials filters the public listing to approved entries only.
func (s *Service) ApprovedTestimonials(ctx context.Context) ([]Testimonial, error) {
	recs, err := s.Store.GetAll(ctx, TestimonialsCollection)
	if err != nil {
		return nil, err
	}
	out := []Testimonial{}
	for _, rec := range recs {
		t, err := store.Decode[Testimonial](rec)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("skipping malformed testimonial")
			continue
		}
		if !t.Approved {
			continue
		}
		t.ID = rec.ID
		out = append(out, t)
	}
	return out, nil
}

// MarkContactRead flips read to true; it never goes back.
func (s *Service) MarkContactRead(ctx context.Context, id string) error {
	return s.Store.Patch(ctx, ContactsCollection+"/"+id, map[string]any{"read": true})
}

// SetTestimonialApproved toggles public visibility of a testimonial.
func (s *Service) SetTestimonialApproved(ctx context.Context, id string, approved bool) error {
	return s.Store.Patch(ctx, TestimonialsCollection+"/"+id, map[string]any{"approved": approved})
}
