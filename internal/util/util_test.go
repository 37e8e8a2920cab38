package util

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestNullStringPtrRoundTrip(t *testing.T) {
	if NullStringToPtr(NullStringPtr(nil)) != nil {
		t.Error("nil should stay nil")
	}
	empty := ""
	if got := NullStringToPtr(NullStringPtr(&empty)); got == nil || *got != "" {
		t.Errorf("empty string pointer should survive, got %v", got)
	}
}

func TestNullTime(t *testing.T) {
	if NullTime(nil).Valid {
		t.Error("nil time should be null")
	}

	ts := time.Date(2019, 12, 12, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	ns := NullTime(&ts)
	if ns.String != "2019-12-12T09:30:00Z" {
		t.Errorf("NullTime() = %q", ns.String)
	}
	back := NullStringToTime(ns)
	if back == nil || !back.Equal(ts) {
		t.Errorf("NullStringToTime() = %v, want %v", back, ts)
	}

	if NullStringToTime(sql.NullString{String: "garbage", Valid: true}) != nil {
		t.Error("unparsable time should be nil")
	}
}

func TestBoolToInt64(t *testing.T) {
	if BoolToInt64(true) != 1 || BoolToInt64(false) != 0 {
		t.Error("BoolToInt64 mismatch")
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDateISO(nil); got != "-" {
		t.Errorf("FormatDateISO(nil) = %q", got)
	}
	ts := time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC)
	if got := FormatDateISO(&ts); got != "2020-05-04" {
		t.Errorf("FormatDateISO() = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2020-05-04", "2020-05-04T00:00:00Z"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", in, err)
		}
		if !got.Equal(time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("ParseDate(%q) = %v", in, got)
		}
	}
	if _, err := ParseDate("04/05/2020"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDefaultSnapshotPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	got, err := DefaultSnapshotPath()
	if err != nil {
		t.Fatalf("DefaultSnapshotPath failed: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "experimenter", "recipes.db"); got != want {
		t.Errorf("DefaultSnapshotPath() = %q, want %q", got, want)
	}
}
