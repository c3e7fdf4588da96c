package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	userdom "firstpick/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
//
// - collection: users
// - docId: uid
// - fields: uid, username, email, createdAt, updatedAt
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func (r *UserRepositoryFS) Get(ctx context.Context, uid string) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return userdom.Profile{}, userdom.ErrNotFound
		}
		return userdom.Profile{}, err
	}
	return profileFromSnapshot(uid, snap), nil
}

// Save runs fn in a transaction and writes the whole profile back.
func (r *UserRepositoryFS) Save(ctx context.Context, uid string, fn userdom.SaveFunc) (userdom.Profile, error) {
	if r == nil || r.Client == nil {
		return userdom.Profile{}, errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return userdom.Profile{}, errors.New("user_repository_fs: uid is empty")
	}
	ref := r.col().Doc(uid)

	var out userdom.Profile
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		p := userdom.Profile{UID: uid}
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			p = profileFromSnapshot(uid, snap)
		case status.Code(err) != codes.NotFound:
			return err
		}

		if err := fn(&p); err != nil {
			return err
		}
		out = p
		return tx.Set(ref, map[string]any{
			"uid":       uid,
			"username":  p.Username,
			"email":     p.Email,
			"createdAt": p.CreatedAt.UTC(),
			"updatedAt": p.UpdatedAt.UTC(),
		})
	})
	if err != nil {
		return userdom.Profile{}, err
	}
	return out, nil
}

func profileFromSnapshot(uid string, snap *firestore.DocumentSnapshot) userdom.Profile {
	m := snap.Data()
	p := userdom.Profile{
		UID:       uid,
		Username:  asString(m["username"]),
		Email:     asString(m["email"]),
		CreatedAt: firstTime(m, "createdAt"),
		UpdatedAt: firstTime(m, "updatedAt"),
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = snap.CreateTime.UTC()
	}
	return p
}
