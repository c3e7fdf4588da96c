package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotConfigured = errors.New("secrets: not configured")
	ErrNotFound      = errors.New("secrets: secret not found")
)

// versionAccessor is the part of *secretmanager.Client used here.
type versionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretManager resolves config secrets (e.g. the Redis password) by id.
type SecretManager struct {
	Client    versionAccessor
	ProjectID string
	closer    func() error
}

func NewSecretManager(ctx context.Context, projectID string, opts ...option.ClientOption) (*SecretManager, error) {
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil, fmt.Errorf("%w: projectID is empty", ErrNotConfigured)
	}
	c, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secrets: create client: %w", err)
	}
	return &SecretManager{Client: c, ProjectID: pid, closer: c.Close}, nil
}

// Access returns the latest version of secretID as a trimmed string.
func (s *SecretManager) Access(ctx context.Context, secretID string) (string, error) {
	if s == nil || s.Client == nil {
		return "", ErrNotConfigured
	}
	id := strings.TrimSpace(secretID)
	if id == "" {
		return "", fmt.Errorf("%w: secret id is empty", ErrNotConfigured)
	}

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.ProjectID, id)
	res, err := s.Client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("secrets: access %s: %w", id, err)
	}
	if res == nil || res.Payload == nil || len(res.Payload.Data) == 0 {
		return "", fmt.Errorf("%w: %s has no payload", ErrNotFound, id)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}

func (s *SecretManager) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
