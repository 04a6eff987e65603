package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/context-timer/internal/observability"
)

type metricsMock struct {
	calculateFn func(since time.Time) (*observability.Metrics, error)
}

func (m *metricsMock) Calculate(since time.Time) (*observability.Metrics, error) {
	return m.calculateFn(since)
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = nil

	err := metricsCmd.RunE(metricsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not-initialized error, got %v", err)
	}
}

func TestMetricsCmd_Table(t *testing.T) {
	newTestTimer(t)
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()

	var gotSince time.Time
	MetricsCalc = &metricsMock{calculateFn: func(since time.Time) (*observability.Metrics, error) {
		gotSince = since
		return &observability.Metrics{
			EventCount:      12,
			SessionsStarted: 4,
			SwitchesLogged:  3,
			TrackedSeconds:  5400,
			SecondsByTask:   map[string]int64{"Coding": 3600, "Email": 1800},
		}, nil
	}}

	out := runOK(t, func() error { return metricsCmd.RunE(metricsCmd, nil) })
	if want := testNow.AddDate(0, 0, -7); !gotSince.Equal(want) {
		t.Errorf("since = %v, want %v", gotSince, want)
	}
	for _, want := range []string{"Events recorded:", "12", "1h 30m", "Coding:", "01:00:00", "Email:", "00:30:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Index(out, "Coding:") > strings.Index(out, "Email:") {
		t.Errorf("tasks not sorted by name: %q", out)
	}
}

func TestMetricsCmd_JSON(t *testing.T) {
	newTestTimer(t)
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = &metricsMock{calculateFn: func(time.Time) (*observability.Metrics, error) {
		return &observability.Metrics{TasksCreated: 2}, nil
	}}
	setFlags(t, metricsCmd, map[string]string{"json": "true"})

	out := runOK(t, func() error { return metricsCmd.RunE(metricsCmd, nil) })
	var m observability.Metrics
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decoding: %v\n%s", err, out)
	}
	if m.TasksCreated != 2 {
		t.Errorf("tasks_created = %d, want 2", m.TasksCreated)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	newTestTimer(t)
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = &metricsMock{calculateFn: func(time.Time) (*observability.Metrics, error) {
		return nil, errors.New("disk gone")
	}}

	err := metricsCmd.RunE(metricsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestParseSinceDuration(t *testing.T) {
	newTestTimer(t)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", testNow.AddDate(0, 0, -7), false},
		{"30d", testNow.AddDate(0, 0, -30), false},
		{"24h", testNow.Add(-24 * time.Hour), false},
		{" 2d ", testNow.AddDate(0, 0, -2), false},
		{"xd", time.Time{}, true},
		{"5m", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseSinceDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSinceDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseSinceDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
