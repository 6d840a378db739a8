package storage

import (
	"encoding/json"
	"log"

	"housefinder/models"
)

// Fixed keys, kept identical to the original web client's localStorage keys
// so a migrated profile stays readable.
const (
	KeyRecommendations = "recommendations_data"
	KeySource          = "recommendations_source"
	KeyForm            = "housefinder_form_data"
)

// SourceSubmit marks a result set that came from an explicit user submission.
// Only submitted results are trusted on a later load; anything else forces a
// fresh default fetch.
const SourceSubmit = "submit"

// RecommendationCache persists the last recommendation result set between
// page views.
type RecommendationCache struct {
	store KV
}

func NewRecommendationCache(store KV) *RecommendationCache {
	return &RecommendationCache{store: store}
}

// Save serializes the result set wholesale together with its provenance tag.
func (c *RecommendationCache) Save(res *models.Recommendations, source string) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := c.store.Set(KeyRecommendations, string(data)); err != nil {
		return err
	}
	return c.store.Set(KeySource, source)
}

// Load returns the cached result set if it is usable: provenance must be
// "submit", the payload must parse, and the property list must be non-empty.
// Every failure mode reads as "no usable cache"; none is surfaced as an error.
func (c *RecommendationCache) Load() (*models.Recommendations, bool) {
	source, ok, err := c.store.Get(KeySource)
	if err != nil || !ok || source != SourceSubmit {
		return nil, false
	}

	raw, ok, err := c.store.Get(KeyRecommendations)
	if err != nil || !ok {
		return nil, false
	}

	var res models.Recommendations
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		log.Printf("Cache: discarding unparseable recommendations blob: %v", err)
		return nil, false
	}
	if len(res.Properties) == 0 {
		return nil, false
	}
	return &res, true
}

// Find looks a single property up in the cached blob regardless of
// provenance, so a detail view can avoid a round trip after a default fetch.
func (c *RecommendationCache) Find(propertyID int) (*models.Property, bool) {
	raw, ok, err := c.store.Get(KeyRecommendations)
	if err != nil || !ok {
		return nil, false
	}

	var res models.Recommendations
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, false
	}
	for i := range res.Properties {
		if res.Properties[i].PropertyID == propertyID {
			p := res.Properties[i]
			return &p, true
		}
	}
	return nil, false
}

// Clear drops the cached result set and its provenance tag.
func (c *RecommendationCache) Clear() error {
	if err := c.store.Delete(KeyRecommendations); err != nil {
		return err
	}
	return c.store.Delete(KeySource)
}

// SaveForm keeps the last submitted questionnaire for pre-filling.
func (c *RecommendationCache) SaveForm(prefs *models.FormPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return c.store.Set(KeyForm, string(data))
}

// LoadForm restores the last submitted questionnaire, if any.
func (c *RecommendationCache) LoadForm() (*models.FormPreferences, bool) {
	raw, ok, err := c.store.Get(KeyForm)
	if err != nil || !ok {
		return nil, false
	}
	var prefs models.FormPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, false
	}
	return &prefs, true
}
