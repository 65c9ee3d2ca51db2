// Package alert suppresses repeated identical threshold alerts per
// (device, field) pair.
package alert

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/store"
)

const defaultKeyPrefix = "alert:state:"

// Debouncer tracks the last-notified status per (device, field) in an
// injected key-value store, so concurrently ingesting requests share one
// view of alert state.
type Debouncer struct {
	kv        store.KV
	keyPrefix string
	logger    *zap.Logger
}

func NewDebouncer(kv store.KV, keyPrefix string, logger *zap.Logger) *Debouncer {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Debouncer{kv: kv, keyPrefix: keyPrefix, logger: logger}
}

func (d *Debouncer) stateKey(deviceID, fieldID string) string {
	return fmt.Sprintf("%s%s:%s", d.keyPrefix, deviceID, fieldID)
}

// ShouldNotify decides whether a new status is worth a notification.
// A repeat of the stored status is suppressed; any status change notifies.
// Normal clears the tracked state and notifies only if a non-Normal status
// was being tracked (the recovery transition).
func (d *Debouncer) ShouldNotify(ctx context.Context, deviceID, fieldID string, status models.ThresholdLevel) (bool, error) {
	key := d.stateKey(deviceID, fieldID)

	stored, err := d.kv.Get(ctx, key)
	tracked := true
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			return false, fmt.Errorf("failed to read alert state: %w", err)
		}
		tracked = false
	}

	if status == models.LevelNormal {
		if !tracked {
			return false, nil
		}
		if err := d.kv.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("failed to clear alert state: %w", err)
		}
		return true, nil
	}

	if tracked && stored == string(status) {
		return false, nil
	}

	if err := d.kv.Set(ctx, key, string(status), 0); err != nil {
		return false, fmt.Errorf("failed to store alert state: %w", err)
	}
	return true, nil
}

// ResetField drops the tracked state of one field, e.g. when the field is
// deleted.
func (d *Debouncer) ResetField(ctx context.Context, deviceID, fieldID string) error {
	return d.kv.Delete(ctx, d.stateKey(deviceID, fieldID))
}

// ResetDevice drops every tracked state of a device.
func (d *Debouncer) ResetDevice(ctx context.Context, deviceID string) error {
	keys, err := d.kv.ScanKeys(ctx, fmt.Sprintf("%s%s:*", d.keyPrefix, deviceID))
	if err != nil {
		return fmt.Errorf("failed to scan alert state: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return d.kv.Delete(ctx, keys...)
}
