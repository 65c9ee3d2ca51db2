package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/notifier"
	"telemetry-ingest/internal/repository"
)

// MeasurementArchive is the read/manage side of stored measurements.
type MeasurementArchive interface {
	GetMeasurement(ctx context.Context, measurementID string) (*models.DeviceMeasurement, error)
	ListMeasurements(ctx context.Context, deviceID string, limit int) ([]models.DeviceMeasurement, error)
	ListValues(ctx context.Context, measurementID string) ([]models.FieldMeasurementValue, error)
	UpdateMeasurementDate(ctx context.Context, measurementID string, date time.Time) error
	DeleteMeasurement(ctx context.Context, measurementID string) error
}

// MeasurementHandler serves stored measurements: listing, detail, the one
// allowed post-ingestion update (the measurement date) and deletion.
type MeasurementHandler struct {
	measurements MeasurementArchive
	notify       notifier.Notifier
	logger       *zap.Logger
}

func NewMeasurementHandler(measurements MeasurementArchive, notify notifier.Notifier, logger *zap.Logger) *MeasurementHandler {
	return &MeasurementHandler{measurements: measurements, notify: notify, logger: logger}
}

// Routes registers the API on a mux.
func (h *MeasurementHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ingest/api/v1/devices/{id}/measurements", h.ListMeasurements)
	mux.HandleFunc("GET /ingest/api/v1/measurements/{id}", h.GetMeasurement)
	mux.HandleFunc("PUT /ingest/api/v1/measurements/{id}/date", h.UpdateMeasurementDate)
	mux.HandleFunc("DELETE /ingest/api/v1/measurements/{id}", h.DeleteMeasurement)
}

// GET /ingest/api/v1/devices/{id}/measurements?limit=N
func (h *MeasurementHandler) ListMeasurements(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	limit := parseIntParam(r.URL.Query().Get("limit"), 100)

	list, err := h.measurements.ListMeasurements(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.Error("failed to list measurements",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list measurements"))
		return
	}

	views := make([]measurementView, 0, len(list))
	for _, m := range list {
		views = append(views, toMeasurementView(m))
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

type measurementDetailResponse struct {
	Measurement measurementView                `json:"measurement"`
	Values      []models.FieldMeasurementValue `json:"values"`
}

// GET /ingest/api/v1/measurements/{id}
func (h *MeasurementHandler) GetMeasurement(w http.ResponseWriter, r *http.Request) {
	measurementID := r.PathValue("id")

	m, err := h.measurements.GetMeasurement(r.Context(), measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrMeasurementNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("measurement not found"))
			return
		}
		h.logger.Error("failed to load measurement",
			zap.String("measurement_id", measurementID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load measurement"))
		return
	}

	values, err := h.measurements.ListValues(r.Context(), measurementID)
	if err != nil {
		h.logger.Error("failed to load field values",
			zap.String("measurement_id", measurementID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load field values"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(measurementDetailResponse{
		Measurement: toMeasurementView(*m),
		Values:      values,
	}))
}

type updateDateRequest struct {
	MeasurementDate string `json:"measurement_date"`
}

// PUT /ingest/api/v1/measurements/{id}/date
func (h *MeasurementHandler) UpdateMeasurementDate(w http.ResponseWriter, r *http.Request) {
	measurementID := r.PathValue("id")

	var req updateDateRequest
	if err := readBodyJSON(r, maxPayloadBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	date, err := time.Parse(time.RFC3339, req.MeasurementDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("measurement_date must be RFC3339"))
		return
	}

	if err := h.measurements.UpdateMeasurementDate(r.Context(), measurementID, date); err != nil {
		if errors.Is(err, repository.ErrMeasurementNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("measurement not found"))
			return
		}
		h.logger.Error("failed to update measurement date",
			zap.String("measurement_id", measurementID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to update measurement date"))
		return
	}

	if m, err := h.measurements.GetMeasurement(r.Context(), measurementID); err == nil {
		h.notify.MeasurementUpdated(r.Context(), m)
	}
	writeJSON(w, http.StatusOK, Ok(nil))
}

// DELETE /ingest/api/v1/measurements/{id}
func (h *MeasurementHandler) DeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	measurementID := r.PathValue("id")

	m, err := h.measurements.GetMeasurement(r.Context(), measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrMeasurementNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("measurement not found"))
			return
		}
		h.logger.Error("failed to load measurement",
			zap.String("measurement_id", measurementID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load measurement"))
		return
	}

	if err := h.measurements.DeleteMeasurement(r.Context(), measurementID); err != nil {
		h.logger.Error("failed to delete measurement",
			zap.String("measurement_id", measurementID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to delete measurement"))
		return
	}

	h.notify.MeasurementDeleted(r.Context(), m.DeviceID, measurementID)
	writeJSON(w, http.StatusOK, Ok(nil))
}

func toMeasurementView(m models.DeviceMeasurement) measurementView {
	return measurementView{
		MeasurementID:      m.MeasurementID,
		DeviceID:           m.DeviceID,
		DataFormat:         string(m.DataFormat),
		CreatedOn:          m.CreatedOn.Format(time.RFC3339),
		MeasurementDate:    m.MeasurementDate.Format(time.RFC3339),
		ParsedSuccessfully: m.ParsedSuccessfully,
		ParsingErrors:      m.ParsingErrors,
	}
}
