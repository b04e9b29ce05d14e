package client

import (
	"context"
	"errors"

	"github.com/zhouzirui/unlonely/backend/internal/model/mood"
)

// Location says where a submission ended up.
type Location string

const (
	LocationServer Location = "server"
	LocationLocal  Location = "local"
)

// Submission is the result of Journal.Submit.
type Submission struct {
	Entry    mood.Entry
	Location Location
}

// Journal persists each entry exactly once, on the server or locally,
// following the server's useClientStorage signal.
type Journal struct {
	remote *RemoteRepository
	local  *LocalCache
}

// NewJournal combines the server journal with a local cache.
func NewJournal(remote *RemoteRepository, local *LocalCache) *Journal {
	return &Journal{remote: remote, local: local}
}

// Submit posts the entry and mirrors it locally only when the server did not
// keep it. Validation and transport errors are returned untouched and nothing
// is written locally.
func (j *Journal) Submit(ctx context.Context, m string, note *string) (Submission, error) {
	entry, err := j.remote.Append(ctx, mood.Mood(m), note)
	if err == nil {
		return Submission{Entry: entry, Location: LocationServer}, nil
	}
	if !errors.Is(err, ErrUseClientStorage) {
		return Submission{}, err
	}

	if entry.ID != "" {
		// Keep the server's placeholder so ids and timestamps agree.
		if err := j.local.keep(entry); err != nil {
			return Submission{}, err
		}
		return Submission{Entry: entry, Location: LocationLocal}, nil
	}

	entry, err = j.local.Append(ctx, mood.Mood(m), note)
	if err != nil {
		return Submission{}, err
	}
	return Submission{Entry: entry, Location: LocationLocal}, nil
}

// History lists server entries, or local ones when the server says so.
func (j *Journal) History(ctx context.Context) ([]mood.Entry, Location, error) {
	entries, err := j.remote.List(ctx)
	if errors.Is(err, ErrUseClientStorage) {
		entries, err = j.local.List(ctx)
		return entries, LocationLocal, err
	}
	if err != nil {
		return nil, "", err
	}
	return entries, LocationServer, nil
}

// Local exposes the cache for clearing and counting.
func (j *Journal) Local() *LocalCache {
	return j.local
}
