package client

import (
	"context"
	"errors"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// ErrUseClientStorage means the server asked the caller to keep the entry itself.
var ErrUseClientStorage = errors.New("server asked for client-side storage")

// ErrClearUnsupported is returned by RemoteRepository.Clear; server entries are immutable.
var ErrClearUnsupported = errors.New("server-side mood entries cannot be cleared")

// Repository is a place mood entries live.
type Repository interface {
	List(ctx context.Context) ([]mood.Entry, error)
	Append(ctx context.Context, m mood.Mood, note *string) (mood.Entry, error)
	Clear(ctx context.Context) error
}

var (
	_ Repository = (*RemoteRepository)(nil)
	_ Repository = (*LocalCache)(nil)
)

// RemoteRepository is the server-side journal.
type RemoteRepository struct {
	client *Client
}

// NewRemoteRepository wraps client.
func NewRemoteRepository(client *Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

// List returns ErrUseClientStorage when the server has no database to read from.
func (r *RemoteRepository) List(ctx context.Context) ([]mood.Entry, error) {
	list, err := r.client.ListMoods(ctx)
	if err != nil {
		return nil, err
	}
	if list.UseClientStorage {
		return nil, ErrUseClientStorage
	}
	return list.Entries, nil
}

// Append returns ErrUseClientStorage, along with the server's placeholder entry
// when it sent one, if the entry was not persisted.
func (r *RemoteRepository) Append(ctx context.Context, m mood.Mood, note *string) (mood.Entry, error) {
	created, err := r.client.CreateMood(ctx, string(m), note)
	if err != nil {
		return mood.Entry{}, err
	}
	if created.UseClientStorage {
		if created.Entry != nil {
			return *created.Entry, ErrUseClientStorage
		}
		return mood.Entry{}, ErrUseClientStorage
	}
	if created.Entry == nil {
		return mood.Entry{}, errors.New("server persisted the entry but did not return it")
	}
	return *created.Entry, nil
}

// Clear is not supported.
func (r *RemoteRepository) Clear(context.Context) error {
	return ErrClearUnsupported
}
