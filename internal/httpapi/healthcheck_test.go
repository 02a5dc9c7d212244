package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	schema := `CREATE TABLE readings (
		date TEXT NOT NULL, time TEXT NOT NULL,
		temperature_c REAL NOT NULL, humidity_pct REAL NOT NULL,
		location TEXT, PRIMARY KEY (date, time)
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func TestHealthz(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(`INSERT INTO readings (date, time, temperature_c, humidity_pct) VALUES
		('2024-01-01', '08:00:00', 18.5, 55),
		('2024-01-01', '09:00:00', 19.0, 54)`); err != nil {
		t.Fatalf("insert readings: %v", err)
	}

	mux := NewMux(db)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status           string `json:"status"`
		ArchivedReadings int    `json:"archived_readings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.ArchivedReadings != 2 {
		t.Errorf("archived_readings = %d, want 2", body.ArchivedReadings)
	}
}

func TestHealthz_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	mux := NewMux(db)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when schema is absent", rec.Code)
	}
}
