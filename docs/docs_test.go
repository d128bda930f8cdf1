package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocRenders(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var out struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths               map[string]any `json:"paths"`
		SecurityDefinitions map[string]any `json:"securityDefinitions"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		t.Fatalf("rendered doc is not JSON: %v", err)
	}
	if out.Info.Title != "Puzzled Pint Map API" {
		t.Fatalf("title = %q", out.Info.Title)
	}
	for _, p := range []string{"/api/v1/map", "/api/v1/layers/{id}", "/api/v1/admin/imports/cities", "/ws"} {
		if _, ok := out.Paths[p]; !ok {
			t.Fatalf("path %s missing", p)
		}
	}
	if _, ok := out.SecurityDefinitions["BearerAuth"]; !ok {
		t.Fatalf("BearerAuth security definition missing")
	}
}
