package usecases_test

import (
	"testing"

	"github.com/lursoto/wayfarer/internal/core/domain"
	"github.com/lursoto/wayfarer/internal/core/usecases"
)

func TestLocationService_Resolve_Success(t *testing.T) {
	svc := usecases.NewLocationService()

	pt := domain.GeoPoint{Lat: 40.4168, Lon: -3.7038}
	loc := svc.Resolve(usecases.LocationReport{Point: &pt})

	if loc.Location == nil {
		t.Fatal("expected a resolved location")
	}
	if *loc.Location != pt {
		t.Errorf("expected %+v, got %+v", pt, *loc.Location)
	}
	if loc.Error != "" {
		t.Errorf("expected no error message, got %q", loc.Error)
	}
}

func TestLocationService_Resolve_Denied(t *testing.T) {
	svc := usecases.NewLocationService()

	loc := svc.Resolve(usecases.LocationReport{Failure: domain.LocationDenied})

	if loc.Location == nil {
		t.Fatal("expected the fallback location, got nil")
	}
	if *loc.Location != usecases.FallbackLocation {
		t.Errorf("expected fallback %+v, got %+v", usecases.FallbackLocation, *loc.Location)
	}
	if loc.Error == "" {
		t.Error("expected an error message naming the failure")
	}
}

func TestLocationService_Resolve_FailureMessages(t *testing.T) {
	svc := usecases.NewLocationService()

	denied := svc.Resolve(usecases.LocationReport{Failure: domain.LocationDenied})
	timeout := svc.Resolve(usecases.LocationReport{Failure: domain.LocationTimeout})
	unavailable := svc.Resolve(usecases.LocationReport{Failure: domain.LocationUnavailable})

	if denied.Error == timeout.Error {
		t.Error("denied and timeout should produce distinct messages")
	}
	if timeout.Error == unavailable.Error {
		t.Error("timeout and unavailable should produce distinct messages")
	}
}

func TestLocationService_Resolve_InvalidPointFallsBack(t *testing.T) {
	svc := usecases.NewLocationService()

	bad := domain.GeoPoint{Lat: 999, Lon: 0}
	loc := svc.Resolve(usecases.LocationReport{Point: &bad})

	if loc.Location == nil || *loc.Location != usecases.FallbackLocation {
		t.Errorf("expected fallback for invalid point, got %+v", loc.Location)
	}
}

func TestLocationService_Resolve_Idempotent(t *testing.T) {
	svc := usecases.NewLocationService()

	first := svc.Resolve(usecases.LocationReport{Failure: domain.LocationTimeout})
	second := svc.Resolve(usecases.LocationReport{Failure: domain.LocationTimeout})

	if *first.Location != *second.Location || first.Error != second.Error {
		t.Error("expected identical resolutions for identical reports")
	}
}
