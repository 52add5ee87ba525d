package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/usecases"
)

type mockMessageRepo struct {
	created []domain.ContactMessage
	err     error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, *msg)
	return nil
}

func TestContactService_Submit(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := usecases.NewContactService(repo)

	msg := &domain.ContactMessage{FirstName: " Ana ", LastName: "Cruz", Email: "ana@example.com", Message: "Tractor 2 keeps stopping."}
	require.NoError(t, svc.Submit(context.Background(), msg))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Ana", repo.created[0].FirstName)
}

func TestContactService_Validation(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := usecases.NewContactService(repo)

	tests := []*domain.ContactMessage{
		{LastName: "Cruz", Email: "a@b.c", Message: "hi"},
		{FirstName: "Ana", LastName: "  ", Email: "a@b.c", Message: "hi"},
		{FirstName: "Ana", LastName: "Cruz", Email: "a@b.c", Message: strings.Repeat("x", 5001)},
	}
	for _, msg := range tests {
		err := svc.Submit(context.Background(), msg)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Empty(t, repo.created)

	err := svc.Submit(context.Background(), &domain.ContactMessage{})
	assert.Contains(t, err.Error(), "All fields are required.")
}

func TestContactService_RepoFailure(t *testing.T) {
	svc := usecases.NewContactService(&mockMessageRepo{err: errors.New("db down")})
	err := svc.Submit(context.Background(), &domain.ContactMessage{FirstName: "a", LastName: "b", Email: "c", Message: "d"})
	assert.ErrorIs(t, err, domain.ErrTransport)
}
