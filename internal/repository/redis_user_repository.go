package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/account-service/internal/domain"
)

// userDocument is the stored shape; unlike domain.User it keeps the hash.
type userDocument struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber"`
	PasswordHash  string    `json:"passwordHash"`
	TermsAccepted bool      `json:"termsAccepted"`
	CreatedAt     time.Time `json:"createdAt"`
}

type redisUserRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisUserRepository stores each user as a JSON document keyed by email.
// SETNX on the email key is the uniqueness constraint.
func NewRedisUserRepository(client redis.UniversalClient, prefix string) UserRepository {
	if prefix == "" {
		prefix = "account"
	}
	return &redisUserRepository{client: client, prefix: prefix}
}

func (r *redisUserRepository) emailKey(email string) string {
	return r.prefix + ":user:email:" + email
}

func (r *redisUserRepository) idKey(id string) string {
	return r.prefix + ":user:id:" + id
}

func (r *redisUserRepository) Insert(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(userDocument{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		ContactNumber: user.ContactNumber,
		PasswordHash:  user.PasswordHash,
		TermsAccepted: user.TermsAccepted,
		CreatedAt:     user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.emailKey(user.Email), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if !ok {
		return ErrEmailTaken
	}

	if err := r.client.Set(ctx, r.idKey(user.ID), user.Email, 0).Err(); err != nil {
		_ = r.client.Del(ctx, r.emailKey(user.Email)).Err()
		return fmt.Errorf("index user id: %w", err)
	}
	return nil
}

func (r *redisUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	raw, err := r.client.Get(ctx, r.emailKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &domain.User{
		ID:            doc.ID,
		Name:          doc.Name,
		Email:         doc.Email,
		ContactNumber: doc.ContactNumber,
		PasswordHash:  doc.PasswordHash,
		TermsAccepted: doc.TermsAccepted,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func (r *redisUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	email, err := r.client.Get(ctx, r.idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user id: %w", err)
	}
	return r.FindByEmail(ctx, email)
}

func (r *redisUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
