package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sithum-sy/hireme-sub001/internal/catalog"
	"github.com/sithum-sy/hireme-sub001/internal/domain"
	"github.com/sithum-sy/hireme-sub001/internal/events"
	"github.com/sithum-sy/hireme-sub001/internal/export"
	"github.com/sithum-sy/hireme-sub001/internal/query"
)

// Config for the HTTP API handler.
type Config struct {
	Store     query.Store
	Events    events.Writer
	Export    export.Engine
	ExportDir string
	BasePath  string
	Auth      AuthConfig
}

// errorDiag is the nested diagnostic the console prefers over the top-level
// message when present.
type errorDiag struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// apiError models the error envelope the staff console parses.
type apiError struct {
	status  int
	Message string     `json:"message"`
	Detail  *errorDiag `json:"error,omitempty"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

func newAPIError(status int, message string, detail *errorDiag) huma.StatusError {
	return &apiError{status: status, Message: message, Detail: detail}
}

// New returns an HTTP handler exposing the staff reports API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, msg, nil)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("HireMe Staff Reports API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuthToken(group, cfg.Auth)
	registerDataSources(group)
	registerFieldOptions(group, cfg)
	registerCustomReport(group, cfg)
	registerTest(group, cfg)
	registerExports(group, cfg)
	registerExportDownload(router, basePath, cfg)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, query.ErrNotFound) {
		return newAPIError(http.StatusNotFound, err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "unknown data source"),
		strings.Contains(lowered, "unknown field"),
		strings.Contains(lowered, "unknown filter field"),
		strings.Contains(lowered, "no fields selected"),
		strings.Contains(lowered, "not valid"),
		strings.Contains(lowered, "unsupported operator"),
		strings.Contains(lowered, "comma-separated"),
		strings.Contains(lowered, "at least one value"):
		return newAPIError(http.StatusUnprocessableEntity, msg, nil)
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "Failed to generate report", &errorDiag{Message: msg})
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuthToken(api huma.API, auth AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "issue-token",
		Method:      http.MethodPost,
		Path:        "/staff/auth/token",
		Summary:     "Issue a staff bearer token",
	}, func(ctx context.Context, input *struct {
		Body tokenRequest `json:"body"`
	}) (*struct {
		Body tokenResponse `json:"body"`
	}, error) {
		actor := input.Body.ActorID
		if actor == "" {
			return nil, newAPIError(http.StatusBadRequest, "actor_id is required", nil)
		}
		token, err := IssueToken(auth.JWTSecret, actor, auth.TokenTTL, time.Now())
		if err != nil {
			return nil, newAPIError(http.StatusServiceUnavailable, "token issuing is not configured", nil)
		}
		return &struct {
			Body tokenResponse `json:"body"`
		}{Body: tokenResponse{Token: token}}, nil
	})
}

func registerDataSources(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "report-data-sources",
		Method:      http.MethodGet,
		Path:        "/staff/reports/data-sources",
		Summary:     "List queryable data sources",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body dataSourcesResponse `json:"body"`
	}, error) {
		return &struct {
			Body dataSourcesResponse `json:"body"`
		}{Body: dataSourcesResponse{Data: catalog.All()}}, nil
	})
}

func registerFieldOptions(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "report-field-options",
		Method:      http.MethodGet,
		Path:        "/staff/reports/field-options",
		Summary:     "Distinct values for a filterable field",
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		DataSource string `query:"data_source" required:"true"`
		Field      string `query:"field" required:"true"`
	}) (*struct {
		Body fieldOptionsResponse `json:"body"`
	}, error) {
		opts, err := cfg.Store.FieldOptions(ctx, input.DataSource, input.Field)
		if err != nil {
			return nil, handleError(err)
		}
		resp := fieldOptionsResponse{}
		resp.Data.Options = opts
		return &struct {
			Body fieldOptionsResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerCustomReport(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-custom-report",
		Method:      http.MethodPost,
		Path:        "/staff/reports/custom",
		Summary:     "Execute a custom report specification",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body domain.Spec `json:"body"`
	}) (*struct {
		Body reportResponse `json:"body"`
	}, error) {
		spec := input.Body
		if spec.DataSource == "" {
			return nil, newAPIError(http.StatusBadRequest, "data_source is required", nil)
		}
		if len(spec.SelectedFields) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "fields is required", nil)
		}
		res, err := cfg.Store.Execute(ctx, spec)
		if err != nil {
			return nil, handleError(err)
		}
		_ = cfg.Events.Append(ctx, "report.generated", spec.DataSource, actorIDFromContext(ctx), events.EventPayload{
			"fields":          len(spec.SelectedFields),
			"filters_applied": res.Meta.FiltersApplied,
			"total":           res.Pagination.Total,
		})
		return &struct {
			Body reportResponse `json:"body"`
		}{Body: reportResponse{Data: res}}, nil
	})
}

func registerTest(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "report-connectivity-test",
		Method:      http.MethodGet,
		Path:        "/staff/reports/test",
		Summary:     "Connectivity probe for manual troubleshooting",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body testResponse `json:"body"`
	}, error) {
		dbState := "ok"
		if err := cfg.Store.DB.PingContext(ctx); err != nil {
			dbState = "unreachable: " + err.Error()
		}
		return &struct {
			Body testResponse `json:"body"`
		}{Body: testResponse{
			Status:      "ok",
			Database:    dbState,
			DataSources: len(catalog.Keys()),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}}, nil
	})
}

func registerExports(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-exports",
		Method:      http.MethodGet,
		Path:        "/staff/reports/exports",
		Summary:     "List recorded export artifacts",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"50"`
	}) (*struct {
		Body exportListResponse `json:"body"`
	}, error) {
		items, err := cfg.Store.ListExports(ctx, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body exportListResponse `json:"body"`
		}{Body: exportListResponse{Data: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-export",
		Method:        http.MethodPost,
		Path:          "/staff/reports/exports",
		Summary:       "Execute a specification and persist the rendered export",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateExportRequest `json:"body"`
	}) (*struct {
		Body exportResponse `json:"body"`
	}, error) {
		req := input.Body
		if req.Format != "csv" && req.Format != "html" {
			return nil, newAPIError(http.StatusBadRequest, "format must be csv or html", nil)
		}
		if req.Spec.DataSource == "" {
			return nil, newAPIError(http.StatusBadRequest, "spec.data_source is required", nil)
		}
		if len(req.Spec.SelectedFields) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "spec.fields is required", nil)
		}
		src, _ := catalog.Get(req.Spec.DataSource)
		res, err := cfg.Store.Execute(ctx, req.Spec)
		if err != nil {
			return nil, handleError(err)
		}
		var artifact export.Artifact
		if req.Format == "csv" {
			artifact, err = cfg.Export.CSV(&res, req.Spec, src)
		} else {
			artifact, err = cfg.Export.HTML(&res, req.Spec, src)
		}
		if err != nil {
			return nil, handleError(err)
		}
		if err := (export.FileViewer{Dir: cfg.ExportDir}).View(artifact); err != nil {
			return nil, newAPIError(http.StatusInternalServerError, "failed to store export", &errorDiag{Message: err.Error()})
		}
		rec := domain.ExportRecord{
			ID:         uuid.NewString(),
			DataSource: req.Spec.DataSource,
			Format:     req.Format,
			Filename:   artifact.Filename,
			RowCount:   len(res.Results),
			CreatedBy:  actorIDFromContext(ctx),
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := cfg.Store.InsertExport(ctx, rec); err != nil {
			return nil, handleError(err)
		}
		_ = cfg.Events.Append(ctx, "export.generated", rec.DataSource, rec.CreatedBy, events.EventPayload{
			"export_id": rec.ID,
			"format":    rec.Format,
			"rows":      rec.RowCount,
		})
		return &struct {
			Body exportResponse `json:"body"`
		}{Body: exportResponse{Data: rec}}, nil
	})
}

func registerExportDownload(r chi.Router, basePath string, cfg Config) {
	r.Get(path.Join(basePath, "staff/reports/exports/{id}/download"), func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		rec, err := cfg.Store.GetExport(req.Context(), id)
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		data, err := os.ReadFile(filepath.Join(cfg.ExportDir, rec.Filename))
		if err != nil {
			respondStatusError(w, newAPIError(http.StatusNotFound, "export artifact is no longer available", nil))
			return
		}
		mime := "text/csv;charset=utf-8"
		if rec.Format == "html" {
			mime = "text/html;charset=utf-8"
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
		w.Write(data)
	})
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>HireMe Staff Reports API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}
