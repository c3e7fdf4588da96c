package firestore

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	contactdom "firstpick/internal/domain/contact"
)

// ContactRepositoryFS implements contact.Repository using Firestore.
//
// - collection: contactFormSubmissions
// - docId: sender email (lower-cased)
// - fields: name, email, phone, message, timestamp
type ContactRepositoryFS struct {
	Client *firestore.Client
}

func NewContactRepositoryFS(client *firestore.Client) *ContactRepositoryFS {
	return &ContactRepositoryFS{Client: client}
}

func (r *ContactRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("contactFormSubmissions")
}

func (r *ContactRepositoryFS) Put(ctx context.Context, s contactdom.Submission) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(s.ID).Set(ctx, map[string]any{
		"name":      s.Name,
		"email":     s.Email,
		"phone":     s.Phone,
		"message":   s.Message,
		"timestamp": s.SubmittedAt.UTC(),
	})
	return err
}

func (r *ContactRepositoryFS) List(ctx context.Context) ([]contactdom.Submission, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	list, err := collect(ctx, r.col().Query, func(snap *firestore.DocumentSnapshot) (contactdom.Submission, error) {
		m := snap.Data()
		return contactdom.Submission{
			ID:          snap.Ref.ID,
			Name:        asString(m["name"]),
			Email:       asString(m["email"]),
			Phone:       asString(m["phone"]),
			Message:     asString(m["message"]),
			SubmittedAt: firstTime(m, "timestamp"),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SubmittedAt.After(list[j].SubmittedAt)
	})
	return list, nil
}

func (r *ContactRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return contactdom.ErrNotFound
	}
	if _, err := r.col().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return contactdom.ErrNotFound
		}
		return err
	}
	return nil
}
