// Command export-measurements dumps the stored measurements of one device
// to an Excel workbook for offline inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"telemetry-ingest/internal/config"
	"telemetry-ingest/internal/database"
	"telemetry-ingest/internal/logger"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/repository"
)

var measurementHeader = []string{
	"Measurement ID",
	"Ingested On",
	"Measurement Date",
	"Data Format",
	"Parsed",
	"Parsing Errors",
	"Raw Data",
}

var valueHeader = []string{
	"Measurement ID",
	"Field Name",
	"Value",
}

func main() {
	var (
		deviceID = flag.String("device", "", "device id to export")
		limit    = flag.Int("limit", 1000, "maximum number of measurements")
		out      = flag.String("out", "measurements.xlsx", "output file path")
	)
	flag.Parse()

	if *deviceID == "" {
		log.Fatal("-device is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "export-measurements")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	devices := repository.NewDeviceRepository(db, zlog)
	measurements := repository.NewMeasurementRepository(db, zlog)

	device, err := devices.GetDevice(ctx, *deviceID)
	if err != nil {
		zlog.Fatal("Failed to load device", zap.Error(err))
	}

	list, err := measurements.ListMeasurements(ctx, device.DeviceID, *limit)
	if err != nil {
		zlog.Fatal("Failed to list measurements", zap.Error(err))
	}

	values := make(map[string][]models.FieldMeasurementValue, len(list))
	for _, m := range list {
		v, err := measurements.ListValues(ctx, m.MeasurementID)
		if err != nil {
			zlog.Fatal("Failed to list field values",
				zap.String("measurement_id", m.MeasurementID), zap.Error(err))
		}
		values[m.MeasurementID] = v
	}

	if err := writeWorkbook(*out, list, values); err != nil {
		zlog.Fatal("Failed to write workbook", zap.Error(err))
	}

	zlog.Info("Export complete",
		zap.String("device_id", device.DeviceID),
		zap.String("device_name", device.Name),
		zap.Int("measurements", len(list)),
		zap.String("out", *out),
	)
}

func writeWorkbook(path string, list []models.DeviceMeasurement, values map[string][]models.FieldMeasurementValue) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	measurementSheet := "Measurements"
	index, err := f.NewSheet(measurementSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	valueSheet := "Field Values"
	if _, err := f.NewSheet(valueSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	if err := writeHeader(f, measurementSheet, measurementHeader, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, valueSheet, valueHeader, headerStyle); err != nil {
		return err
	}

	for i, m := range list {
		row := []any{
			m.MeasurementID,
			m.CreatedOn.Format(time.RFC3339),
			m.MeasurementDate.Format(time.RFC3339),
			string(m.DataFormat),
			m.ParsedSuccessfully,
			m.ParsingErrors,
			m.RawData,
		}
		if err := writeRow(f, measurementSheet, i+2, row); err != nil {
			return err
		}
	}

	valueRow := 2
	for _, m := range list {
		for _, v := range values[m.MeasurementID] {
			row := []any{v.MeasurementID, v.FieldName, v.Value}
			if err := writeRow(f, valueSheet, valueRow, row); err != nil {
				return err
			}
			valueRow++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
