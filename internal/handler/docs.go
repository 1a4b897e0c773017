package handler

import (
	"bytes"
	"html/template"
	"net/http"
)

func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(spec)
	}
}

// ServeDocs renders Swagger UI against specURL. The page keeps the operator's
// bearer token across reloads and stamps a fresh Idempotency-Key on every
// write, since the ledger refuses POSTs without one.
func ServeDocs(specURL string) http.HandlerFunc {
	var page bytes.Buffer
	if err := docsTemplate.Execute(&page, struct{ SpecURL string }{specURL}); err != nil {
		panic(err)
	}
	body := page.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Cafeteria Ledger API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: {{.SpecURL}},
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout",
      persistAuthorization: true,
      requestInterceptor: function (req) {
        if (req.method !== "GET" && !req.headers["Idempotency-Key"]) {
          req.headers["Idempotency-Key"] = crypto.randomUUID();
        }
        return req;
      }
    });
  </script>
</body>
</html>`))
