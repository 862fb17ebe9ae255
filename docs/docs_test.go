// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package docs_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/swaggo/swag"

	"github.com/tomtom215/familymap/docs"
	"github.com/tomtom215/familymap/internal/api"
)

type swaggerDoc struct {
	Swagger  string                                `json:"swagger"`
	BasePath string                                `json:"basePath"`
	Paths    map[string]map[string]json.RawMessage `json:"paths"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc() error = %v", err)
	}
	var doc swaggerDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	return doc
}

func TestSwaggerInfo(t *testing.T) {
	doc := readDoc(t)
	if doc.Swagger != "2.0" {
		t.Errorf("swagger = %q, want 2.0", doc.Swagger)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q, want /api/v1", doc.BasePath)
	}
}

// Every API route the router mounts must be described, and nothing else.
func TestDocumentMatchesRouter(t *testing.T) {
	doc := readDoc(t)

	router, ok := api.NewRouter(&api.Handler{}, nil, nil, nil).SetupChi().(chi.Routes)
	if !ok {
		t.Fatal("SetupChi() should return chi.Routes")
	}

	const prefix = "/api/v1"
	mounted := map[string]bool{}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, prefix+"/") {
			return nil
		}
		path := strings.TrimPrefix(route, prefix)
		key := strings.ToLower(method) + " " + path
		mounted[key] = true
		if _, ok := doc.Paths[path][strings.ToLower(method)]; !ok {
			t.Errorf("%s %s is mounted but not documented", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk() error = %v", err)
	}

	for path, ops := range doc.Paths {
		for method := range ops {
			if !mounted[method+" "+path] {
				t.Errorf("%s %s is documented but not mounted", strings.ToUpper(method), path)
			}
		}
	}
}
