package verification

import (
	"context"
	"errors"
	"strings"

	"stowage/models"
	"stowage/services/upstream"

	"go.uber.org/zap"
)

// Gateway resolves an operator-supplied code to the reservation's current
// snapshot. Stateless per call; the storage platform is authoritative.
type Gateway interface {
	Verify(ctx context.Context, code string) (*models.ReservationSnapshot, error)
}

// DefaultGateway implements Gateway against the storage platform client.
type DefaultGateway struct {
	Upstream upstream.Client
	Logger   *zap.Logger
}

// Verify validates the code locally, then asks the platform for the
// snapshot. An empty or whitespace-only code fails with a ValidationError
// before any network call. Remote failures come back as TransportError;
// "no match" comes back as a not_found snapshot, not an error.
func (g *DefaultGateway) Verify(ctx context.Context, code string) (*models.ReservationSnapshot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Field: "code", Reason: "code must not be empty"}
	}

	snap, err := g.Upstream.Verify(ctx, code)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			g.Logger.Warn("verification rejected by storage platform",
				zap.Int("status", apiErr.StatusCode), zap.String("message", apiErr.Message))
			return nil, &TransportError{Op: "verify", Message: apiErr.Message, Err: err}
		}
		return nil, &TransportError{Op: "verify", Message: "could not reach the storage platform", Err: err}
	}

	if !snap.Found() && snap.Status != models.StatusNotFound {
		// Normalize the platform's null-reservation variant.
		snap.Status = models.StatusNotFound
	}
	return snap, nil
}
