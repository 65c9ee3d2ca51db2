// Package httpapi exposes the ingestion endpoint and the read-only
// transformation-type catalog.
package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/pipeline"
	"telemetry-ingest/internal/repository"
	"telemetry-ingest/internal/service"
)

const maxPayloadBytes = 1 << 20

type IngestHandler struct {
	ingestor *service.Ingestor
	logger   *zap.Logger
}

func NewIngestHandler(ingestor *service.Ingestor, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{ingestor: ingestor, logger: logger}
}

// Routes registers the API on a mux.
func (h *IngestHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest/api/v1/devices/{id}/measurements", h.PostMeasurement)
	mux.HandleFunc("GET /ingest/api/v1/transformation-types", h.GetTransformationTypes)
}

type postMeasurementRequest struct {
	RawData    string `json:"raw_data"`
	DataFormat string `json:"data_format"`
}

type postMeasurementResponse struct {
	Measurement measurementView                `json:"measurement"`
	Values      []models.FieldMeasurementValue `json:"values"`
	Alerts      []models.ThresholdStatus       `json:"alerts"`
}

type measurementView struct {
	MeasurementID      string `json:"measurement_id"`
	DeviceID           string `json:"device_id"`
	DataFormat         string `json:"data_format"`
	CreatedOn          string `json:"created_on"`
	MeasurementDate    string `json:"measurement_date"`
	ParsedSuccessfully bool   `json:"parsed_successfully"`
	ParsingErrors      string `json:"parsing_errors,omitempty"`
}

// POST /ingest/api/v1/devices/{id}/measurements
func (h *IngestHandler) PostMeasurement(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")

	var req postMeasurementRequest
	if err := readBodyJSON(r, maxPayloadBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.RawData == "" {
		writeJSON(w, http.StatusBadRequest, Fail("raw_data is required"))
		return
	}
	format, ok := models.ParseDataFormat(req.DataFormat)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail("unsupported data_format"))
		return
	}

	resolved, alerts, err := h.ingestor.IngestMeasurement(r.Context(), deviceID, req.RawData, format)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("device not found"))
			return
		}
		h.logger.Error("measurement ingestion failed",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to ingest measurement"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(postMeasurementResponse{
		Measurement: toMeasurementView(resolved.Measurement),
		Values:      resolved.Values,
		Alerts:      alerts,
	}))
}

// GET /ingest/api/v1/transformation-types
func (h *IngestHandler) GetTransformationTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Ok(pipeline.Catalog()))
}
