// RoomSense mockapi - local stand-in for the Mobile Alerts service.
//
// mockapi serves the lastmeasurement endpoint with randomised
// temperature data so the full stack can run without cloud access or
// real hardware. Point the fetcher's api_url at it and everything
// downstream behaves exactly as in production.
//
// Whether a device reports a second temperature channel or humidity is
// derived from its hex id, so a given device id always has the same
// shape across requests.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tmemler/roomsense/internal/infrastructure/logging"
	"github.com/tmemler/roomsense/internal/mobilealerts"
)

const defaultAddr = ":8000"

var version = "dev"

func main() {
	log := logging.Default("mockapi")

	addr := os.Getenv("MOCKAPI_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/api/pv1/device/lastmeasurement", handleLastMeasurement)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "Unknown endpoint",
		})
	})

	log.Info("mock measurement API listening",
		"version", version,
		"addr", addr,
		"endpoint", "POST /api/pv1/device/lastmeasurement",
	)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func handleLastMeasurement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Malformed request body",
		})
		return
	}

	raw := r.PostFormValue("deviceids")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing 'deviceids' parameter",
		})
		return
	}

	var devices []mobilealerts.Device
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		devices = append(devices, deviceResponse(id))
	}

	writeJSON(w, http.StatusOK, mobilealerts.Response{
		Success: true,
		Devices: devices,
	})
}

// deviceResponse fabricates a plausible last measurement for one
// device. Ids divisible by 2 carry a second temperature channel, ids
// divisible by 3 carry humidity.
func deviceResponse(id string) mobilealerts.Device {
	now := time.Now().Unix()

	hasT2, hasH := false, false
	if n, err := strconv.ParseUint(id, 16, 64); err == nil {
		hasT2 = n%2 == 0
		hasH = n%3 == 0
	}

	m := &mobilealerts.DeviceMeasurement{
		TS: &now,
		T1: randTemp(),
	}
	if hasT2 {
		m.T2 = randTemp()
	}
	if hasH {
		h := float64(rand.Intn(81) + 10)
		m.H = &h
	}

	return mobilealerts.Device{
		DeviceID:    id,
		Measurement: m,
	}
}

// randTemp returns a temperature in the 10.0-30.0 range with one
// decimal place, like the real service reports.
func randTemp() *float64 {
	t := float64(rand.Intn(201)+100) / 10
	return &t
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintf(os.Stderr, "encoding response: %v\n", err)
	}
}
