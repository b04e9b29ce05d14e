package mood

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Mood is the only thing a journal entry records besides an optional note.
type Mood string

const (
	Happy Mood = "Happy"
	Meh   Mood = "Meh"
	Sad   Mood = "Sad"
)

// ClientIDPrefix marks identifiers issued outside the database.
const ClientIDPrefix = "client_"

var (
	ErrMoodRequired = errors.New("Mood is required")
	ErrInvalidMood  = errors.New("Invalid mood value. Must be Happy, Meh, or Sad")
)

// Parse validates a raw mood value. Matching is exact; "happy" is rejected.
func Parse(raw string) (Mood, error) {
	if raw == "" {
		return "", ErrMoodRequired
	}
	switch m := Mood(raw); m {
	case Happy, Meh, Sad:
		return m, nil
	default:
		return "", ErrInvalidMood
	}
}

// Entry is shared by the database rows, the API payloads and the client-side cache.
type Entry struct {
	ID        string    `json:"id"`
	Mood      Mood      `json:"mood"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeNote maps an empty note to null.
func NormalizeNote(note *string) *string {
	if note == nil || *note == "" {
		return nil
	}
	n := *note
	return &n
}

// NewClientEntry builds an entry that lives only in client storage.
func NewClientEntry(m Mood, note *string, now time.Time) Entry {
	return Entry{
		ID:        NewClientID(now),
		Mood:      m,
		Note:      NormalizeNote(note),
		CreatedAt: now.UTC(),
	}
}

// NewClientID returns client_<unix-ms>_<9 base36 chars>.
func NewClientID(now time.Time) string {
	var b strings.Builder
	b.WriteString(ClientIDPrefix)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(randomBase36(9))
	return b.String()
}

// IsClientID reports whether id was issued by NewClientID.
func IsClientID(id string) bool {
	return strings.HasPrefix(id, ClientIDPrefix)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = base36[rand.Intn(len(base36))]
	}
	return string(buf)
}

// SortNewestFirst orders entries by CreatedAt descending, in place.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

func (e Entry) String() string {
	if e.Note == nil {
		return fmt.Sprintf("%s %s", e.CreatedAt.Format(time.RFC3339), e.Mood)
	}
	return fmt.Sprintf("%s %s: %s", e.CreatedAt.Format(time.RFC3339), e.Mood, *e.Note)
}
