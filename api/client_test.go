package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"housefinder/models"
)

func newTestClient(url string) *Client {
	return NewClient(url, &http.Client{Timeout: 2 * time.Second})
}

func TestSubmitForm_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/properties/submit-form" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("expected Accept application/json, got %q", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"message":"ok","data":{
			"properties":[{"property_id":7,"name":"Kent Vale","latitude":"1.3521","longitude":103.8198}],
			"total_count":15}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).SubmitForm(context.Background(), &models.FormPreferences{
		MinMonthlyRent: 1000, MaxMonthlyRent: 2000, SchoolID: 1,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(res.Properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(res.Properties))
	}
	if res.TotalCount != 15 {
		t.Fatalf("total_count should pass through as 15, got %d", res.TotalCount)
	}

	p := res.Properties[0]
	if p.Latitude.String() != "1.3521" {
		t.Fatalf("expected canonical latitude 1.3521, got %s", p.Latitude.String())
	}
	if p.Longitude.String() != "103.8198" {
		t.Fatalf("expected canonical longitude 103.8198, got %s", p.Longitude.String())
	}
}

func TestDo_EnvelopeErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// application error on a 2xx transport status
		w.Write([]byte(`{"code":40003,"message":"could not parse requirements","data":null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SubmitDescription(context.Background(), &models.DescriptionEnquiry{
		RequirementDescription: "somewhere near NUS",
	})

	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if ae.Code != 40003 || ae.Message != "could not parse requirements" {
		t.Fatalf("unexpected error payload: %+v", ae)
	}
}

func TestDo_ValidationError422(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":{"error_code":42201,"message":"Missing necessary information: school.","missing_fields":["school"]}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SubmitDescription(context.Background(), &models.DescriptionEnquiry{
		RequirementDescription: "cheap room please",
	})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if ve.Code != 42201 {
		t.Fatalf("expected error_code 42201, got %d", ve.Code)
	}
	if len(ve.MissingFields) != 1 || ve.MissingFields[0] != "school" {
		t.Fatalf("unexpected missing fields: %v", ve.MissingFields)
	}
}

func TestDo_HTMLWhereJSONExpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>It works!</body></html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DefaultRecommendations(context.Background())
	if !errors.Is(err, ErrUnexpectedHTML) {
		t.Fatalf("expected ErrUnexpectedHTML, got %v", err)
	}
}

func TestDo_NetworkErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).DefaultRecommendations(context.Background())

	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	var ae *APIError
	if errors.As(err, &ae) {
		t.Fatalf("network failure must not classify as application error")
	}
}

func TestPropertyMap_RawHTMLPassthrough(t *testing.T) {
	const fragment = `<html><head><script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script></head><body><div id="map"></div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/properties/map" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "text/html" {
			t.Errorf("expected Accept text/html, got %q", accept)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(fragment))
	}))
	defer srv.Close()

	doc, err := newTestClient(srv.URL).PropertyMap(context.Background(), &models.MapRequest{PropertyID: 7})
	if err != nil {
		t.Fatalf("map fetch failed: %v", err)
	}
	if doc.HTML != fragment {
		t.Fatalf("map body must pass through unchanged")
	}
	if !IsMapDocument(doc.HTML) {
		t.Fatalf("fragment should validate as a map document")
	}
}

func TestPropertyDetail_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sekrit" {
			t.Errorf("expected bearer token header, got %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"message":"ok","data":{"property_id":7,"latitude":"1.29","longitude":"103.77"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SetTokenSource(func() string { return "sekrit" })

	prop, err := c.PropertyDetail(context.Background(), 7)
	if err != nil {
		t.Fatalf("detail fetch failed: %v", err)
	}
	if prop.PropertyID != 7 {
		t.Fatalf("expected property 7, got %d", prop.PropertyID)
	}
}

func TestIsMapDocument_RejectsNonMaps(t *testing.T) {
	cases := []struct {
		name string
		html string
	}{
		{"empty", ""},
		{"json blob", `{"code":500,"message":"boom"}`},
		{"plain error page", "<html><body><h1>502 Bad Gateway</h1></body></html>"},
	}
	for _, tc := range cases {
		if IsMapDocument(tc.html) {
			t.Fatalf("%s should not validate as a map document", tc.name)
		}
	}
	if !IsMapDocument(FallbackMapHTML) {
		t.Fatalf("bundled fallback must validate as a map document")
	}
}
