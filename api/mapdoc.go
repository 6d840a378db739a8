package api

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsMapDocument reports whether a fetched fragment is actually a usable map
// page: a parseable HTML document with a map container or a Leaflet asset.
// Anything else (an error page, an empty body, a JSON blob) is rejected so
// the caller can fall back to the bundled document.
func IsMapDocument(html string) bool {
	if strings.TrimSpace(html) == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	if doc.Find("#map").Length() > 0 {
		return true
	}
	found := false
	doc.Find("script[src], link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		href, _ := s.Attr("href")
		if strings.Contains(src, "leaflet") || strings.Contains(href, "leaflet") {
			found = true
			return false
		}
		return true
	})
	return found
}

// FallbackMapHTML is a self-contained map page centered on the Singapore
// Central Area, served whenever the map endpoint fails or coordinates are
// missing.
const FallbackMapHTML = `<!DOCTYPE html>
<html>
<head>
  <meta http-equiv="content-type" content="text/html; charset=UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    html, body {
      width: 100%;
      height: 100%;
      margin: 0;
      padding: 0;
    }
    #map {
      position: absolute;
      top: 0;
      bottom: 0;
      right: 0;
      left: 0;
    }
  </style>
</head>
<body>
  <div id="map"></div>
  <script>
    var map = L.map('map').setView([1.3521, 103.8198], 12);

    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors',
      maxZoom: 19
    }).addTo(map);

    var marker = L.marker([1.3521, 103.8198]).addTo(map);
    marker.bindPopup("<b>Singapore Central Area</b><br>").openPopup();
  </script>
</body>
</html>
`
