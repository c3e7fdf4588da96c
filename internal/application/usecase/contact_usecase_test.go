package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contactdom "firstpick/internal/domain/contact"
)

func TestContactSubmit_NoSignInNeeded(t *testing.T) {
	repo := NewMockContactRepository()
	uc := NewContactUsecase(repo, nil, zap.NewNop()).WithClock(fixedClock())

	s, err := uc.Submit(context.Background(), ContactInput{
		Name: "Asha Rao", Email: "Asha@example.com", Message: "Do you ship to Pune?",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", s.ID)
	assert.Equal(t, fixedNow, s.SubmittedAt)

	// same sender replaces the earlier message
	_, err = uc.Submit(context.Background(), ContactInput{
		Name: "Asha Rao", Email: "asha@example.com", Message: "Never mind",
	})
	require.NoError(t, err)

	list, err := uc.List(asAdmin("admin"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Never mind", list[0].Message)
}

func TestContactSubmit_Rejects(t *testing.T) {
	repo := NewMockContactRepository()
	uc := NewContactUsecase(repo, nil, zap.NewNop())

	_, err := uc.Submit(context.Background(), ContactInput{Name: "Asha", Email: "asha@example.com"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, contactdom.ErrInvalidSubmission)

	repo.PutErr = errBackend
	_, err = uc.Submit(context.Background(), ContactInput{Name: "Asha", Email: "asha@example.com", Message: "hi"})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestContactAdminOnly(t *testing.T) {
	repo := NewMockContactRepository()
	uc := NewContactUsecase(repo, nil, zap.NewNop())
	s, err := contactdom.New("Ravi", "ravi@example.com", "", "hello", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Put(context.Background(), s))

	_, err = uc.List(asUser("u1"))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, uc.Delete(asUser("u1"), s.ID), ErrForbidden)
	assert.ErrorIs(t, uc.Delete(context.Background(), s.ID), ErrNotAuthenticated)

	require.NoError(t, uc.Delete(asAdmin("admin"), s.ID))
	assert.ErrorIs(t, uc.Delete(asAdmin("admin"), s.ID), contactdom.ErrNotFound)
}
