package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"invisiguard/metrics"
	"invisiguard/models"
)

func TestExportTargets(t *testing.T) {
	tests := []struct {
		name   string
		target ExportTarget
		want   []string
	}{
		{name: "current selection", target: ExportCurrentSelection, want: []string{"c.eml"}},
		{name: "last analyzed", target: ExportLastAnalyzed, want: []string{"a.eml", "b.eml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			s, saver := newTestSession(t, gw, Options{ExportTarget: tt.target})
			ctx := context.Background()

			s.EmailAnalysis.SelectFiles(files("a.eml", "b.eml"))
			if err := s.EmailAnalysis.OnAnalyze(ctx); err != nil {
				t.Fatal(err)
			}
			s.EmailAnalysis.SelectFiles(files("c.eml"))

			path, err := s.Export.OnExport(ctx)
			if err != nil {
				t.Fatalf("OnExport() error = %v", err)
			}
			if path != "/downloads/"+models.ReportFilename {
				t.Errorf("path = %q", path)
			}
			if len(gw.exported) != 1 || !reflect.DeepEqual(gw.exported[0].Names(), tt.want) {
				t.Errorf("exported = %v, want %v", gw.exported, tt.want)
			}
			if string(saver.saved[models.ReportFilename]) != "%PDF-1.4" {
				t.Errorf("saved = %q", saver.saved[models.ReportFilename])
			}
		})
	}
}

func TestExportWithoutFilesIsNoop(t *testing.T) {
	for _, target := range []ExportTarget{ExportCurrentSelection, ExportLastAnalyzed} {
		gw := &fakeGateway{}
		s, _ := newTestSession(t, gw, Options{ExportTarget: target})

		path, err := s.Export.OnExport(context.Background())
		if err != nil || path != "" {
			t.Errorf("OnExport() = %q, %v", path, err)
		}
		if calls := gw.Calls(); len(calls) != 0 {
			t.Errorf("gateway calls = %v", calls)
		}
	}
}

func TestExportClosesBodyAndCountsSave(t *testing.T) {
	body := newTrackingBody("%PDF")
	gw := &fakeGateway{export: func(context.Context, models.SelectedFiles) (*models.ReportPayload, error) {
		return &models.ReportPayload{ContentType: models.ReportContentType, Body: body}, nil
	}}
	s, _ := newTestSession(t, gw, Options{})
	s.EmailAnalysis.SelectFiles(files("a.eml"))
	before := testutil.ToFloat64(metrics.ReportsSavedTotal)

	if _, err := s.Export.OnExport(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !body.Closed() {
		t.Error("report body not closed")
	}
	if delta := testutil.ToFloat64(metrics.ReportsSavedTotal) - before; delta != 1 {
		t.Errorf("saved counter delta = %v", delta)
	}
}

func TestExportSaveFailure(t *testing.T) {
	for _, policy := range []ErrorPolicy{SwallowErrors, SurfaceErrors} {
		t.Run(policyName(policy), func(t *testing.T) {
			body := newTrackingBody("%PDF")
			gw := &fakeGateway{export: func(context.Context, models.SelectedFiles) (*models.ReportPayload, error) {
				return &models.ReportPayload{Body: body}, nil
			}}
			s, saver := newTestSession(t, gw, Options{ErrorPolicy: policy})
			saveErr := errors.New("disk full")
			saver.err = saveErr
			s.EmailAnalysis.SelectFiles(files("a.eml"))

			path, err := s.Export.OnExport(context.Background())

			if path != "" {
				t.Errorf("path = %q", path)
			}
			if !body.Closed() {
				t.Error("report body not closed after save failure")
			}
			if policy == SurfaceErrors {
				if !errors.Is(err, saveErr) {
					t.Errorf("OnExport() error = %v", err)
				}
				if s.Snapshot().EmailAnalysis.LastError == nil {
					t.Error("LastError not recorded")
				}
			} else if err != nil {
				t.Errorf("OnExport() error = %v, want nil", err)
			}
		})
	}
}

func TestExportDoesNotTouchResults(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newTestSession(t, gw, Options{})
	ctx := context.Background()

	s.EmailAnalysis.SelectFiles(files("a.eml", "b.eml"))
	if err := s.EmailAnalysis.OnAnalyze(ctx); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	if _, err := s.Export.OnExport(ctx); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("export changed workflow state")
	}
}

func TestExportGatewayFailure(t *testing.T) {
	gw := &fakeGateway{export: func(context.Context, models.SelectedFiles) (*models.ReportPayload, error) {
		return nil, errUnreachable
	}}
	s, saver := newTestSession(t, gw, Options{ErrorPolicy: SurfaceErrors})
	s.EmailAnalysis.SelectFiles(files("a.eml"))

	if _, err := s.Export.OnExport(context.Background()); !errors.Is(err, errUnreachable) {
		t.Fatalf("OnExport() error = %v", err)
	}
	if len(saver.saved) != 0 {
		t.Error("nothing should be saved")
	}
}
