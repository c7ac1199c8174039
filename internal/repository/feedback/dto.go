package feedback

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/feedex/internal/domain/classification"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
)

// Hash field names. id, source, sentiment, urgency, themes, processed and
// created_at are also indexed.
const (
	fieldID         = "id"
	fieldSource     = "source"
	fieldContent    = "content"
	fieldAuthor     = "author"
	fieldCreatedAt  = "created_at"
	fieldAttachment = "attachment_ref"
	fieldProcessed  = "processed"
	fieldSentiment  = "sentiment"
	fieldScore      = "score"
	fieldUrgency    = "urgency"
	fieldThemes     = "themes"
)

const themeSeparator = ","

// itemFields flattens an item into hash fields. Unset labels are omitted.
func itemFields(it domfb.Item) map[string]string {
	st := it.State()
	m := map[string]string{
		fieldID:        strconv.FormatInt(st.ID, 10),
		fieldSource:    st.Source,
		fieldContent:   st.Content,
		fieldAuthor:    st.Author,
		fieldCreatedAt: strconv.FormatInt(st.CreatedAt.UnixMilli(), 10),
		fieldProcessed: "0",
	}
	if st.AttachmentRef != "" {
		m[fieldAttachment] = st.AttachmentRef
	}
	if st.Processed {
		for k, v := range labelFields(classification.Result{
			Sentiment: st.Sentiment,
			Score:     st.Score,
			Urgency:   st.Urgency,
			Themes:    st.Themes,
		}) {
			m[k] = v
		}
	}
	return m
}

// labelFields is the classification update written in one HSET.
func labelFields(r classification.Result) map[string]string {
	r = r.Normalize()
	return map[string]string{
		fieldSentiment: string(r.Sentiment),
		fieldScore:     strconv.FormatFloat(r.Score, 'f', -1, 64),
		fieldUrgency:   string(r.Urgency),
		fieldThemes:    strings.Join(r.Themes, themeSeparator),
		fieldProcessed: "1",
	}
}

// parseItem hydrates an item from hash fields.
func parseItem(m map[string]string) (domfb.Item, error) {
	id, err := strconv.ParseInt(m[fieldID], 10, 64)
	if err != nil {
		return domfb.Item{}, fmt.Errorf("parse id %q: %w", m[fieldID], err)
	}
	st := domfb.State{
		ID:            id,
		Source:        m[fieldSource],
		Content:       m[fieldContent],
		Author:        m[fieldAuthor],
		AttachmentRef: m[fieldAttachment],
		Processed:     m[fieldProcessed] == "1",
	}
	if ms, err := strconv.ParseInt(m[fieldCreatedAt], 10, 64); err == nil {
		st.CreatedAt = time.UnixMilli(ms).UTC()
	}
	if st.Processed {
		st.Sentiment = classification.Sentiment(m[fieldSentiment])
		st.Urgency = classification.Urgency(m[fieldUrgency])
		if s, err := strconv.ParseFloat(m[fieldScore], 64); err == nil {
			st.Score = s
		}
		if t := m[fieldThemes]; t != "" {
			st.Themes = strings.Split(t, themeSeparator)
		}
	}
	return domfb.Reconstruct(st), nil
}
