package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"seva-be/events"
	"seva-be/models"
	"seva-be/store"
)

func newService() (*IssueService, *store.MemoryStore, *events.Broadcaster) {
	m := store.NewMemoryStore()
	b := events.NewBroadcaster()
	return NewIssueService(m, b), m, b
}

func validInput() CreateIssueInput {
	return CreateIssueInput{
		Name:        "Ravi",
		Village:     "Rampur",
		Category:    "Water",
		Description: "Hand pump broken near the school",
	}
}

func TestCreateIssueAssignsIdentityAndPendingStatus(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		issue, err := svc.CreateIssue(ctx, validInput())
		if err != nil {
			t.Fatalf("CreateIssue: %v", err)
		}
		if issue.IssueID == "" {
			t.Fatal("empty issueId")
		}
		if !strings.HasPrefix(issue.IssueID, "SEVA") {
			t.Fatalf("issueId %q missing SEVA prefix", issue.IssueID)
		}
		if seen[issue.IssueID] {
			t.Fatalf("issueId %q assigned twice", issue.IssueID)
		}
		seen[issue.IssueID] = true

		if issue.Status != models.Pending {
			t.Fatalf("status = %q, want Pending", issue.Status)
		}
		if issue.Priority != models.Medium {
			t.Fatalf("priority = %q, want Medium", issue.Priority)
		}
		if !issue.CreatedAt.Equal(issue.UpdatedAt) {
			t.Fatal("createdAt and updatedAt must match at creation")
		}
	}
}

func TestCreateIssueValidation(t *testing.T) {
	svc, m, b := newService()
	ctx := context.Background()

	sub := b.Subscribe()
	defer sub.Close()

	cases := []struct {
		name   string
		mutate func(*CreateIssueInput)
	}{
		{"empty description", func(in *CreateIssueInput) { in.Description = "" }},
		{"blank description", func(in *CreateIssueInput) { in.Description = "   " }},
		{"empty name", func(in *CreateIssueInput) { in.Name = "" }},
		{"empty village", func(in *CreateIssueInput) { in.Village = "" }},
		{"empty category", func(in *CreateIssueInput) { in.Category = "" }},
		{"bad priority", func(in *CreateIssueInput) { in.Priority = "Urgent" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := svc.CreateIssue(ctx, in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	// nothing persisted, nothing emitted
	count, err := m.Count(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateIssueEmitsExactlyOneEvent(t *testing.T) {
	svc, _, b := newService()
	ctx := context.Background()

	// events published before subscribing are never replayed
	if _, err := svc.CreateIssue(ctx, validInput()); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	sub := b.Subscribe()
	defer sub.Close()

	issue, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	select {
	case ev := <-sub.C:
		if ev.Name != events.EventNewIssue {
			t.Fatalf("event name = %q, want %q", ev.Name, events.EventNewIssue)
		}
		got, ok := ev.Payload.(models.Issue)
		if !ok {
			t.Fatalf("payload type %T, want models.Issue", ev.Payload)
		}
		if got.IssueID != issue.IssueID {
			t.Fatalf("event issueId = %q, want %q", got.IssueID, issue.IssueID)
		}
	case <-time.After(time.Second):
		t.Fatal("no newIssue event received")
	}

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateIssueRoundTrip(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	lat, lng := 26.85, 80.95
	photo := "data:image/png;base64,aGk="
	in := CreateIssueInput{
		Name:        "Sita",
		Village:     "Lakshmipur",
		Category:    "Electricity",
		Description: "Transformer sparking",
		Location:    &models.Location{Lat: &lat, Lng: &lng, Address: "Main road"},
		PhotoURL:    &photo,
		Priority:    "High",
	}

	created, err := svc.CreateIssue(ctx, in)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	got, err := svc.GetIssue(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if got.Name != in.Name || got.Village != in.Village || got.Category != in.Category || got.Description != in.Description {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Status != models.Pending {
		t.Fatalf("status = %q, want Pending", got.Status)
	}
	if got.Priority != models.High {
		t.Fatalf("priority = %q, want High", got.Priority)
	}
	if got.Location == nil || got.Location.Address != "Main road" {
		t.Fatalf("location mismatch: %+v", got.Location)
	}
	if got.PhotoURL == nil || *got.PhotoURL != photo {
		t.Fatal("photoUrl mismatch")
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, m, b := newService()
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	sub := b.Subscribe()
	defer sub.Close()

	time.Sleep(5 * time.Millisecond)

	updated, err := svc.UpdateStatus(ctx, created.IssueID, models.Resolved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.Resolved {
		t.Fatalf("status = %q, want Resolved", updated.Status)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updatedAt did not strictly increase")
	}

	got, err := m.FindByID(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.Resolved {
		t.Fatalf("persisted status = %q, want Resolved", got.Status)
	}

	select {
	case ev := <-sub.C:
		if ev.Name != events.EventStatusUpdate {
			t.Fatalf("event name = %q, want %q", ev.Name, events.EventStatusUpdate)
		}
		payload, ok := ev.Payload.(models.StatusUpdate)
		if !ok {
			t.Fatalf("payload type %T, want models.StatusUpdate", ev.Payload)
		}
		if payload.IssueID != created.IssueID || payload.Status != models.Resolved {
			t.Fatalf("unexpected payload %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no statusUpdate event received")
	}
}

func TestUpdateStatusSameStatusStillEmitsAndRefreshes(t *testing.T) {
	svc, _, b := newService()
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	sub := b.Subscribe()
	defer sub.Close()

	time.Sleep(5 * time.Millisecond)

	updated, err := svc.UpdateStatus(ctx, created.IssueID, models.Pending)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("no-op transition must still refresh updatedAt")
	}

	select {
	case ev := <-sub.C:
		if ev.Name != events.EventStatusUpdate {
			t.Fatalf("event name = %q", ev.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no-op transition must still emit")
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, m, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "SEVA99999999", models.Resolved); !errors.Is(err, models.ErrIssueNotFound) {
		t.Fatalf("err = %v, want ErrIssueNotFound", err)
	}

	_, err = svc.UpdateStatus(ctx, created.IssueID, "Cancelled")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	// store untouched by either failure
	got, err := m.FindByID(ctx, created.IssueID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.Pending || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("store state changed after failed updates: %+v", got)
	}
}

func TestComputeStats(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	for _, category := range []string{"Water", "Roads", "Water"} {
		in := validInput()
		in.Category = category
		if _, err := svc.CreateIssue(ctx, in); err != nil {
			t.Fatalf("CreateIssue: %v", err)
		}
	}

	stats, err := svc.ComputeStats(ctx)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}

	all, err := svc.ListIssues(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if stats.Total != int64(len(all)) {
		t.Fatalf("total = %d, list length = %d", stats.Total, len(all))
	}
	if stats.Pending != 3 || stats.InProgress != 0 || stats.Resolved != 0 {
		t.Fatalf("unexpected status counts: %+v", stats)
	}

	want := []CategoryCount{{Category: "Roads", Count: 1}, {Category: "Water", Count: 2}}
	if len(stats.Categories) != len(want) {
		t.Fatalf("categories = %+v, want %+v", stats.Categories, want)
	}
	for i := range want {
		if stats.Categories[i] != want[i] {
			t.Fatalf("categories[%d] = %+v, want %+v", i, stats.Categories[i], want[i])
		}
	}
}

func TestComputeStatsTracksTransitions(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	first, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, err := svc.CreateIssue(ctx, validInput()); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, first.IssueID, models.InProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	stats, err := svc.ComputeStats(ctx)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.InProgress != 1 || stats.Resolved != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
