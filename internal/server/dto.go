package server

import "github.com/sithum-sy/hireme-sub001/internal/domain"

// Responses wrap their payload in a data envelope, matching what the staff
// console consumes.

type dataSourcesResponse struct {
	Data map[string]domain.DataSource `json:"data"`
}

type fieldOptionsResponse struct {
	Data struct {
		Options []domain.Option `json:"options"`
	} `json:"data"`
}

type reportResponse struct {
	Data domain.Result `json:"data"`
}

type exportListResponse struct {
	Data []domain.ExportRecord `json:"data"`
}

type exportResponse struct {
	Data domain.ExportRecord `json:"data"`
}

// CreateExportRequest runs a report and persists the rendered artifact.
type CreateExportRequest struct {
	Spec   domain.Spec `json:"spec"`
	Format string      `json:"format" enum:"csv,html"`
}

type tokenRequest struct {
	ActorID string `json:"actor_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type testResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	DataSources int    `json:"data_sources"`
	Timestamp   string `json:"timestamp" format:"date-time"`
}
