package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
)

func TestAuth(t *testing.T) {
	userID := uuid.New()

	var (
		gotID   uuid.UUID
		gotRole Role
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotRole, _ = GetUserRole(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
	}{
		{name: "student", userID: userID.String(), role: "student", wantStatus: http.StatusNoContent},
		{name: "teacher mixed case", userID: userID.String(), role: "Teacher", wantStatus: http.StatusNoContent},
		{name: "missing user", role: "student", wantStatus: http.StatusUnauthorized},
		{name: "numeric user", userID: "42", role: "student", wantStatus: http.StatusUnauthorized},
		{name: "nil uuid", userID: uuid.Nil.String(), role: "student", wantStatus: http.StatusUnauthorized},
		{name: "unknown role", userID: userID.String(), role: "admin", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(HeaderUserID, tt.userID)
			r.Header.Set(HeaderUserRole, tt.role)
			w := httptest.NewRecorder()

			Auth(next).ServeHTTP(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, userID, gotID)
				assert.Contains(t, []Role{RoleStudent, RoleTeacher}, gotRole)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(RoleTeacher, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	handler(w, r.WithContext(WithUser(r.Context(), uuid.New(), RoleStudent)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler(w, r.WithContext(WithUser(r.Context(), uuid.New(), RoleTeacher)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer("test", reg)

	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m))
	router.HandleFunc("/slots/{slotId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slots/"+id, nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var series []string
	for _, family := range families {
		if family.GetName() != "smc_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			assert.Equal(t, float64(2), metric.GetCounter().GetValue())
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					series = append(series, label.GetValue())
				}
			}
		}
	}
	assert.Equal(t, []string{"/slots/{slotId}"}, series)
}
