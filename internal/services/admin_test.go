package services

import (
	"context"
	"testing"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
)

var districtOfficer = access.DistrictEmployee{ID: uuid.New(), District: "Pune"}

func authorityReq() models.CreateAuthorityRequest {
	return models.CreateAuthorityRequest{
		District: "Pune", Block: "Haveli", Locality: "Kothrud",
		Email: "Ward.Office@Pune.gov", AuthorityName: "Ward Office",
	}
}

func TestAuthorityLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.authoritySvc.Create(ctx, root, authorityReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Email != "ward.office@pune.gov" {
		t.Errorf("email = %q", a.Email)
	}

	_, err = f.authoritySvc.Create(ctx, root, authorityReq())
	wantKind(t, err, apperr.KindConflict)

	other := authorityReq()
	other.Locality = "Aundh"
	if _, err := f.authoritySvc.Create(ctx, root, other); err != nil {
		t.Fatalf("different locality: %v", err)
	}

	list, err := f.authoritySvc.List(ctx, root)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v", len(list), err)
	}

	if err := f.authoritySvc.Delete(ctx, root, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantKind(t, f.authoritySvc.Delete(ctx, root, a.ID), apperr.KindNotFound)
}

func TestAuthorityRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.authoritySvc.Create(ctx, districtOfficer, authorityReq())
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.authoritySvc.List(ctx, districtOfficer)
	wantKind(t, err, apperr.KindForbidden)
	wantKind(t, f.authoritySvc.Delete(ctx, districtOfficer, uuid.New()), apperr.KindForbidden)
}

func TestAuthorityValidation(t *testing.T) {
	f := newFixture(t)
	req := authorityReq()
	req.Block = ""
	_, err := f.authoritySvc.Create(context.Background(), root, req)
	wantKind(t, err, apperr.KindValidation)
}

func TestHeatmap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.citizens.put("Asha", "asha@example.com")
	now := time.Now()
	f.seedReport(t, c.ID, "Pune", "Haveli", now)
	f.seedReport(t, c.ID, "Pune", "Haveli", now)
	f.seedReport(t, c.ID, "Pune", "Mulshi", now)
	rejected := f.seedReport(t, c.ID, "Nashik", "Sinnar", now)
	if _, err := f.reports.UpdateStatus(ctx, rejected.ID, models.StatusRejected); err != nil {
		t.Fatal(err)
	}

	byDistrict, err := f.analyticsSvc.Heatmap(ctx, root, "")
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	want := []models.AreaCount{{Area: "Nashik", Count: 1}, {Area: "Pune", Count: 3}}
	if len(byDistrict) != len(want) {
		t.Fatalf("by district = %+v", byDistrict)
	}
	for i := range want {
		if byDistrict[i] != want[i] {
			t.Errorf("by district[%d] = %+v, want %+v", i, byDistrict[i], want[i])
		}
	}

	byBlock, _ := f.analyticsSvc.Heatmap(ctx, root, "Pune")
	if len(byBlock) != 2 || byBlock[0] != (models.AreaCount{Area: "Haveli", Count: 2}) {
		t.Errorf("by block = %+v", byBlock)
	}

	empty, _ := f.analyticsSvc.Heatmap(ctx, root, "Nowhere")
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", empty)
	}

	_, err = f.analyticsSvc.Heatmap(ctx, districtOfficer, "")
	wantKind(t, err, apperr.KindForbidden)
}

func TestActivityQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reportID := uuid.New()

	f.activitySvc.Record(ctx, districtOfficer, &reportID, models.ActivityStatusUpdate, "Status changed from pending to approved")
	f.activitySvc.Record(ctx, root, nil, models.ActivityEmployeeCreated, "Registered Employee account")

	recent, err := f.activitySvc.Recent(ctx, root, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ActivityType != models.ActivityEmployeeCreated {
		t.Errorf("recent = %+v", recent)
	}

	byReport, err := f.activitySvc.ByReport(ctx, root, reportID, 10)
	if err != nil || len(byReport) != 1 {
		t.Fatalf("ByReport = %+v, %v", byReport, err)
	}

	_, err = f.activitySvc.Recent(ctx, districtOfficer, 10)
	wantKind(t, err, apperr.KindForbidden)
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-1: maxActivityLimit, 0: maxActivityLimit, 5: 5, 10000: maxActivityLimit} {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
