package helpers

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewFirestoreClient creates a Firestore client. If credsPath is empty, ADC is used.
// FIRESTORE_EMULATOR_HOST, when set, is honoured by the client library itself.
func NewFirestoreClient(ctx context.Context, projectID, credsPath string) (*firestore.Client, error) {
	if credsPath == "" {
		return firestore.NewClient(ctx, projectID)
	}
	return firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credsPath))
}
