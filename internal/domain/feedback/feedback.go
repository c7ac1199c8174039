// Package feedback defines the FeedbackItem aggregate owned by the store.
package feedback

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
)

// MaxContentSize is the maximum feedback content size in bytes.
const MaxContentSize = 10000

// DefaultSource tags items created without an explicit source.
const DefaultSource = "manual"

// Item is a single piece of feedback. Classification fields are unset until processed.
type Item struct {
	id            int64
	source        string
	content       string
	author        string
	createdAt     time.Time
	attachmentRef string

	processed bool
	labels    classification.Result
}

// State is the full persisted shape of an Item, used for storage hydration.
type State struct {
	ID            int64
	Source        string
	Content       string
	Author        string
	CreatedAt     time.Time
	AttachmentRef string
	Processed     bool
	Sentiment     classification.Sentiment
	Score         float64
	Urgency       classification.Urgency
	Themes        []string
}

// New validates and creates an unprocessed Item. The id is assigned by the store.
func New(source, content, author string, createdAt time.Time) (Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Item{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Item{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = DefaultSource
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Item{
		source:    source,
		content:   content,
		author:    strings.TrimSpace(author),
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(s State) Item {
	it := Item{
		id:            s.ID,
		source:        s.Source,
		content:       s.Content,
		author:        s.Author,
		createdAt:     s.CreatedAt,
		attachmentRef: s.AttachmentRef,
		processed:     s.Processed,
	}
	if s.Processed {
		it.labels = classification.Result{
			Sentiment: s.Sentiment,
			Score:     s.Score,
			Urgency:   s.Urgency,
			Themes:    slices.Clone(s.Themes),
		}
	}
	return it
}

// ID returns the store-assigned identifier.
func (i Item) ID() int64 { return i.id }

// Source returns the free-form origin tag.
func (i Item) Source() string { return i.source }

// Content returns the feedback text.
func (i Item) Content() string { return i.content }

// Author returns the author, possibly empty.
func (i Item) Author() string { return i.author }

// CreatedAt returns the creation time in UTC.
func (i Item) CreatedAt() time.Time { return i.createdAt }

// AttachmentRef returns the opaque attachment reference, possibly empty.
func (i Item) AttachmentRef() string { return i.attachmentRef }

// Processed reports whether a classification attempt has completed.
func (i Item) Processed() bool { return i.processed }

// Labels returns the classification and whether it is set.
func (i Item) Labels() (classification.Result, bool) { return i.labels, i.processed }

// WithID returns a copy carrying the given id.
func (i Item) WithID(id int64) Item {
	i.id = id
	return i
}

// WithAttachment returns a copy carrying an attachment reference.
func (i Item) WithAttachment(ref string) Item {
	i.attachmentRef = ref
	return i
}

// Classified returns a processed copy with normalized labels.
func (i Item) Classified(r classification.Result) Item {
	i.labels = r.Normalize()
	i.processed = true
	return i
}

// State exports the Item for persistence.
func (i Item) State() State {
	return State{
		ID:            i.id,
		Source:        i.source,
		Content:       i.content,
		Author:        i.author,
		CreatedAt:     i.createdAt,
		AttachmentRef: i.attachmentRef,
		Processed:     i.processed,
		Sentiment:     i.labels.Sentiment,
		Score:         i.labels.Score,
		Urgency:       i.labels.Urgency,
		Themes:        slices.Clone(i.labels.Themes),
	}
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Source    string
	Sentiment classification.Sentiment
	Urgency   classification.Urgency
	Offset    int
	Limit     int
}

// MaxListLimit caps a single page.
const MaxListLimit = 100

// Normalize validates enum fields and bounds pagination.
func (f Filter) Normalize() (Filter, error) {
	f.Source = strings.ToLower(strings.TrimSpace(f.Source))
	if f.Sentiment != "" && !f.Sentiment.Valid() {
		return Filter{}, fmt.Errorf("unknown sentiment %q", f.Sentiment)
	}
	if f.Urgency != "" && !f.Urgency.Valid() {
		return Filter{}, fmt.Errorf("unknown urgency %q", f.Urgency)
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	f.Limit = min(f.Limit, MaxListLimit)
	return f, nil
}

// Page is one slice of a filtered listing.
type Page struct {
	Items []Item
	Total int
}
