package mobilealerts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLastMeasurements(t *testing.T) {
	var gotPath, gotDeviceIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotDeviceIDs = r.PostFormValue("deviceids")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"devices": [
				{"deviceid": "aa", "measurement": {"ts": 1740800000, "t1": 21.5, "t2": 19.0}},
				{"deviceid": "bb", "measurement": {"ts": 1740800060, "t1": 18.2}}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	resp, err := client.LastMeasurements(context.Background(), []string{"aa", "bb"})
	if err != nil {
		t.Fatalf("LastMeasurements() error = %v", err)
	}

	if gotPath != "/api/pv1/device/lastmeasurement" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotDeviceIDs != "aa,bb" {
		t.Errorf("deviceids = %q, want aa,bb", gotDeviceIDs)
	}
	if len(resp.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(resp.Devices))
	}

	first := resp.Devices[0]
	if first.DeviceID != "aa" || first.Measurement == nil {
		t.Fatalf("first device = %+v", first)
	}
	if *first.Measurement.TS != 1740800000 || *first.Measurement.T1 != 21.5 || *first.Measurement.T2 != 19.0 {
		t.Errorf("first measurement = %+v", first.Measurement)
	}

	second := resp.Devices[1]
	if second.Measurement.T2 != nil {
		t.Errorf("second device t2 = %v, want nil", *second.Measurement.T2)
	}
}

func TestLastMeasurements_EmptyDeviceList(t *testing.T) {
	client := NewClient("http://unused.invalid", time.Second)
	_, err := client.LastMeasurements(context.Background(), nil)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("error = %v, want ErrRequestFailed", err)
	}
}

func TestLastMeasurements_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.LastMeasurements(context.Background(), []string{"aa"})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestLastMeasurements_SuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "devices": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.LastMeasurements(context.Background(), []string{"aa"})
	if !errors.Is(err, ErrUnsuccessful) {
		t.Fatalf("error = %v, want ErrUnsuccessful", err)
	}
}

func TestLastMeasurements_SuccessAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"devices": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.LastMeasurements(context.Background(), []string{"aa"})
	if !errors.Is(err, ErrUnsuccessful) {
		t.Fatalf("error = %v, want ErrUnsuccessful", err)
	}
}

func TestLastMeasurements_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": tru`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.LastMeasurements(context.Background(), []string{"aa"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("error = %v, want ErrRequestFailed", err)
	}
}

func TestLastMeasurements_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, err := client.LastMeasurements(context.Background(), []string{"aa"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("error = %v, want ErrRequestFailed", err)
	}
}
