package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

// DefaultCollection holds one document per user, keyed by user id.
const DefaultCollection = "users"

// ErrUserNotFound is returned by Update when the document does not exist.
var ErrUserNotFound = errors.New("firestore: user not found")

type userDocument struct {
	ID       string `firestore:"id"`
	Username string `firestore:"username"`
	Email    string `firestore:"email"`
	Password string `firestore:"password,omitempty"`
}

func toDocument(u entity.User) userDocument {
	return userDocument{ID: u.ID, Username: u.Username, Email: u.Email, Password: u.Password}
}

func (d userDocument) toEntity() entity.User {
	return entity.NewUser(d.ID, d.Username, d.Email, d.Password)
}

type UserRepository struct {
	client     *firestore.Client
	collection string
}

func NewUserRepository(client *firestore.Client, collection string) *UserRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &UserRepository{client: client, collection: collection}
}

func (r *UserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

func (r *UserRepository) Save(ctx context.Context, u entity.User) (entity.User, error) {
	if _, err := r.users().Doc(u.ID).Set(ctx, toDocument(u)); err != nil {
		return entity.User{}, fmt.Errorf("set user document: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	snap, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get user document: %w", err)
	}
	return decode(snap)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.users().Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return decode(snap)
}

func (r *UserRepository) Update(ctx context.Context, u entity.User) (entity.User, error) {
	var password any = u.Password
	if u.Password == "" {
		password = firestore.Delete
	}
	_, err := r.users().Doc(u.ID).Update(ctx, []firestore.Update{
		{Path: "username", Value: u.Username},
		{Path: "email", Value: u.Email},
		{Path: "password", Value: password},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, fmt.Errorf("update user document: %w", err)
	}
	return u, nil
}

func decode(snap *firestore.DocumentSnapshot) (*entity.User, error) {
	if snap == nil || !snap.Exists() {
		return nil, nil
	}
	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	u := doc.toEntity()
	return &u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
