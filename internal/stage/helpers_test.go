package stage_test

import (
	"errors"
	"testing"

	"qualfill/internal/quality"
	"qualfill/internal/services"
	"qualfill/internal/stage"
)

func TestParseRequirementValid(t *testing.T) {
	req, err := stage.ParseRequirement("quality", "filter.quality", " 720p+ !cam ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, _ := quality.Parse("1080p hdtv")
	if !req.Allows(d) {
		t.Fatalf("expected %s to allow %s", req, d)
	}
}

func TestParseRequirementInvalid(t *testing.T) {
	_, err := stage.ParseRequirement("quality", "filter.quality", "720p+ bogus")
	if err == nil {
		t.Fatal("expected error for invalid requirement")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	var invalid *quality.InvalidRequirementError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected wrapped InvalidRequirementError, got %v", err)
	}
}

func TestHealthConstructors(t *testing.T) {
	if h := stage.Healthy("quality"); !h.Ready || h.Name != "quality" {
		t.Fatalf("unexpected healthy record: %+v", h)
	}
	if h := stage.Unhealthy("assume_quality", "not prepared"); h.Ready || h.Detail != "not prepared" {
		t.Fatalf("unexpected unhealthy record: %+v", h)
	}
}
