package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"housefinder/api"
	"housefinder/identity"
	"housefinder/models"
	"housefinder/storage"
)

// RecommendationService drives the full page-load flow: validate, decorate
// with the device identity, call the API, persist the result, and resolve
// map fragments with graceful fallback.
type RecommendationService struct {
	client  *api.Client
	cache   *storage.RecommendationCache
	devices *identity.Provider
	history *storage.EnquiryStore     // optional, nil when no database configured
	archive *storage.SnapshotUploader // optional, nil when no bucket configured
}

func NewRecommendationService(client *api.Client, cache *storage.RecommendationCache, devices *identity.Provider) *RecommendationService {
	return &RecommendationService{
		client:  client,
		cache:   cache,
		devices: devices,
	}
}

// SetHistory enables Postgres enquiry history.
func (s *RecommendationService) SetHistory(store *storage.EnquiryStore) {
	s.history = store
}

// SetArchive enables snapshot archival of submitted result sets.
func (s *RecommendationService) SetArchive(uploader *storage.SnapshotUploader) {
	s.archive = uploader
}

// SubmitForm validates and submits the questionnaire. On success the result
// is cached with submit provenance and the form is kept for pre-filling.
func (s *RecommendationService) SubmitForm(ctx context.Context, prefs *models.FormPreferences) (*models.Recommendations, error) {
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preferences: %w", err)
	}
	prefs.DeviceID = s.devices.DeviceID()

	res, err := s.client.SubmitForm(ctx, prefs)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Save(res, storage.SourceSubmit); err != nil {
		log.Printf("Service: could not cache submitted result: %v", err)
	}
	if err := s.cache.SaveForm(prefs); err != nil {
		log.Printf("Service: could not save form for pre-fill: %v", err)
	}

	if s.history != nil {
		if err := s.history.RecordForm(ctx, prefs, res); err != nil {
			log.Printf("Service: history record failed: %v", err)
		}
	}
	s.archiveSnapshot(ctx, prefs.DeviceID, res)

	return res, nil
}

// SubmitDescription validates and submits a free-text enquiry. A
// *api.ValidationError from the backend carries the missing fields.
func (s *RecommendationService) SubmitDescription(ctx context.Context, description string) (*models.Recommendations, error) {
	enquiry := &models.DescriptionEnquiry{
		DeviceID:               s.devices.DeviceID(),
		RequirementDescription: description,
	}
	if err := enquiry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid description: %w", err)
	}

	res, err := s.client.SubmitDescription(ctx, enquiry)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Save(res, storage.SourceSubmit); err != nil {
		log.Printf("Service: could not cache submitted result: %v", err)
	}

	if s.history != nil {
		if err := s.history.RecordDescription(ctx, enquiry, res); err != nil {
			log.Printf("Service: history record failed: %v", err)
		}
	}
	s.archiveSnapshot(ctx, enquiry.DeviceID, res)

	return res, nil
}

// Recommendations returns the cached submitted result when usable, falling
// back to a default fetch otherwise. The default fetch is cached without
// submit provenance, so a later load will refresh it again.
func (s *RecommendationService) Recommendations(ctx context.Context) (*models.Recommendations, error) {
	if res, ok := s.cache.Load(); ok {
		log.Printf("Service: serving %d cached properties", len(res.Properties))
		return res, nil
	}

	res, err := s.client.DefaultRecommendations(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(res, ""); err != nil {
		log.Printf("Service: could not cache default result: %v", err)
	}
	return res, nil
}

// RefreshDefault re-fetches the default result set, replacing any cached
// copy that did not come from a submission. Used by the daemon scheduler.
func (s *RecommendationService) RefreshDefault(ctx context.Context) error {
	if _, ok := s.cache.Load(); ok {
		// A submitted result is authoritative; leave it alone.
		return nil
	}
	res, err := s.client.DefaultRecommendations(ctx)
	if err != nil {
		return err
	}
	return s.cache.Save(res, "")
}

// PropertyDetail resolves one listing, preferring the cached result set.
func (s *RecommendationService) PropertyDetail(ctx context.Context, id int) (*models.Property, error) {
	if prop, ok := s.cache.Find(id); ok {
		return prop, nil
	}
	return s.client.PropertyDetail(ctx, id)
}

// PropertyMap fetches the map fragment for a resolved property. It never
// fails: a missing coordinate, a transport error, or a non-map payload all
// degrade to the bundled fallback document. The second return value reports
// whether the fallback was used. Callers must resolve the property first;
// the map fetch is always sequenced after property resolution.
func (s *RecommendationService) PropertyMap(ctx context.Context, prop *models.Property) (*models.MapDocument, bool) {
	if prop == nil || !prop.HasCoordinates() {
		log.Printf("Service: missing coordinates, using fallback map")
		return &models.MapDocument{HTML: api.FallbackMapHTML}, true
	}

	doc, err := s.client.PropertyMap(ctx, &models.MapRequest{
		PropertyID: prop.PropertyID,
		Latitude:   prop.Latitude,
		Longitude:  prop.Longitude,
	})
	if err != nil {
		log.Printf("Service: map fetch failed for property %d, using fallback: %v", prop.PropertyID, err)
		return &models.MapDocument{HTML: api.FallbackMapHTML}, true
	}
	if !api.IsMapDocument(doc.HTML) {
		log.Printf("Service: map payload for property %d is not a map document, using fallback", prop.PropertyID)
		return &models.MapDocument{HTML: api.FallbackMapHTML}, true
	}
	return doc, false
}

// History returns recent enquiries for this device, when history is enabled.
func (s *RecommendationService) History(ctx context.Context, limit int) ([]storage.EnquiryRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("history store not configured")
	}
	return s.history.RecentEnquiries(ctx, s.devices.DeviceID(), limit)
}

func (s *RecommendationService) archiveSnapshot(ctx context.Context, deviceID string, res *models.Recommendations) {
	if s.archive == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		log.Printf("Service: snapshot marshal failed: %v", err)
		return
	}
	key, err := s.archive.UploadSnapshot(ctx, deviceID, data)
	if err != nil {
		log.Printf("Service: snapshot upload failed: %v", err)
		return
	}
	log.Printf("Service: archived snapshot %s", key)
}
