package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-user-registration/internal/domain/event"
)

// UserIndexer maintains a search projection of registered users.
type UserIndexer struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{ES: es, Index: index, Timeout: 3 * time.Second}
}

type userDoc struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	HasPassword bool   `json:"has_password"`
	CreatedAt   string `json:"created_at"`
}

// HandleUserCreated indexes the new user. has_password reflects the request,
// a generated password is not tracked here.
func (ix *UserIndexer) HandleUserCreated(ctx context.Context, evt event.UserCreated) error {
	if ix.ES == nil || ix.Index == "" {
		return nil
	}
	b, err := json.Marshal(userDoc{
		ID:          evt.UserID,
		Username:    evt.Username,
		Email:       evt.Email,
		HasPassword: evt.HasPassword,
		CreatedAt:   evt.OccurredAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{Index: ix.Index, DocumentID: evt.UserID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, ix.Timeout)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index response: %s", res.Status())
	}
	return nil
}
