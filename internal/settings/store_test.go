package settings_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/settings"
)

func TestStore_NumericValuesRoundTripOnSQLite(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "settings-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	store := settings.NewStore(conn)
	ctx := context.Background()

	if _, errUpsert := store.Upsert(ctx, "RATE_LIMIT_RSVP_MAX", json.RawMessage(`3`)); errUpsert != nil {
		t.Fatalf("upsert: %v", errUpsert)
	}
	raw, found, errValue := store.Value(ctx, "RATE_LIMIT_RSVP_MAX")
	if errValue != nil || !found {
		t.Fatalf("value: found=%v err=%v", found, errValue)
	}
	if got, ok := settings.ParsePositiveInt(raw); !ok || got != 3 {
		t.Fatalf("expected 3, got %d (ok=%v) from %q", got, ok, raw)
	}

	rows, errList := store.List(ctx)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	var sawMax bool
	for _, row := range rows {
		if row.Key == "RATE_LIMIT_RSVP_MAX" {
			sawMax = true
			if string(row.Value) != "3" {
				t.Fatalf("expected stored value 3, got %q", row.Value)
			}
		}
	}
	if !sawMax {
		t.Fatalf("expected RATE_LIMIT_RSVP_MAX in %d rows", len(rows))
	}

	if errUpdate := conn.Model(&models.Setting{}).Where("key = ?", settings.SiteNameKey).
		Update("value", models.SettingValue(`"Anna & Ben"`)).Error; errUpdate != nil {
		t.Fatalf("update site name: %v", errUpdate)
	}
	if name := store.SiteName(ctx); name != "Anna & Ben" {
		t.Fatalf("expected site name from settings, got %q", name)
	}
}

func TestSettingValue_ScanAcceptsNumericColumns(t *testing.T) {
	var v models.SettingValue
	if errScan := v.Scan(int64(12)); errScan != nil {
		t.Fatalf("scan int: %v", errScan)
	}
	if string(v) != "12" {
		t.Fatalf("expected 12, got %q", v)
	}
	if errScan := v.Scan(float64(1.5)); errScan != nil {
		t.Fatalf("scan float: %v", errScan)
	}
	if string(v) != "1.5" {
		t.Fatalf("expected 1.5, got %q", v)
	}
	if errScan := v.Scan([]byte(`{"a":1}`)); errScan != nil {
		t.Fatalf("scan bytes: %v", errScan)
	}
	out, errMarshal := json.Marshal(map[string]any{"value": v})
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	if string(out) != `{"value":{"a":1}}` {
		t.Fatalf("unexpected json %s", out)
	}
}
