package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cafemanage/api/internal/handler"
	"github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/model"
)

// --- Mock SettingsStore ---

type mockSettingsStore struct {
	settings model.Settings
	saved    []model.Settings
}

func (m *mockSettingsStore) Settings() (model.Settings, error) {
	return m.settings, nil
}

func (m *mockSettingsStore) SaveSettings(st model.Settings) error {
	m.saved = append(m.saved, st)
	return nil
}

func defaultTestSettings() model.Settings {
	return model.Settings{
		CafeName:      "My Cafe",
		MenuURL:       "https://mycafe.com/menu",
		TaxRate:       money("0.10"),
		ServiceCharge: money("0.05"),
	}
}

func setupSettingsRouter(st *mockSettingsStore) *chi.Mux {
	h := handler.NewSettingsHandler(st)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	h.RegisterRoutes(r)
	h.RegisterAdminRoutes(r)
	return r
}

// --- Tests ---

func TestSettingsGet(t *testing.T) {
	router := setupSettingsRouter(&mockSettingsStore{settings: defaultTestSettings()})

	rr := doAuthRequest(t, router, "GET", "/settings", nil, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["cafe_name"] != "My Cafe" {
		t.Errorf("cafe_name = %v, want My Cafe", resp["cafe_name"])
	}
	if resp["tax_rate"] != "0.1" {
		t.Errorf("tax_rate = %v, want 0.1", resp["tax_rate"])
	}
}

func TestSettingsUpdate_HappyPath(t *testing.T) {
	st := &mockSettingsStore{settings: defaultTestSettings()}
	router := setupSettingsRouter(st)

	rr := doAuthRequest(t, router, "PUT", "/settings", map[string]string{
		"cafe_name":      "New Cafe",
		"menu_url":       "https://newcafe.com/menu",
		"tax_rate":       "0.12",
		"service_charge": "0.08",
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if len(st.saved) != 1 {
		t.Fatalf("saved %d times, want 1", len(st.saved))
	}
	if st.saved[0].CafeName != "New Cafe" || st.saved[0].TaxRate.String() != "0.12" {
		t.Errorf("saved = %+v", st.saved[0])
	}
}

func TestSettingsUpdate_Validation(t *testing.T) {
	st := &mockSettingsStore{settings: defaultTestSettings()}
	router := setupSettingsRouter(st)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"tax_rate": "0.1", "service_charge": "0.05"}},
		{"bad tax rate", map[string]string{"cafe_name": "X", "tax_rate": "ten", "service_charge": "0.05"}},
		{"negative tax rate", map[string]string{"cafe_name": "X", "tax_rate": "-0.1", "service_charge": "0.05"}},
		{"bad service charge", map[string]string{"cafe_name": "X", "tax_rate": "0.1", "service_charge": "five"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, "PUT", "/settings", tc.body, testClaims())
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
	if len(st.saved) != 0 {
		t.Errorf("saved = %d, want 0 after invalid requests", len(st.saved))
	}
}

func TestSettingsMenuQR_ServesPNG(t *testing.T) {
	router := setupSettingsRouter(&mockSettingsStore{settings: defaultTestSettings()})

	rr := doAuthRequest(t, router, "GET", "/settings/menu-qr", nil, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %s, want image/png", ct)
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(rr.Body.Bytes(), pngMagic) {
		t.Error("body is not a PNG")
	}
}

func TestSettingsMenuQR_NoURLConfigured(t *testing.T) {
	settings := defaultTestSettings()
	settings.MenuURL = ""
	router := setupSettingsRouter(&mockSettingsStore{settings: settings})

	rr := doAuthRequest(t, router, "GET", "/settings/menu-qr", nil, testClaims())

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
