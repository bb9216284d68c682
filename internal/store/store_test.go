package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/testutil"
)

func seedUser(t *testing.T, s *UserStore, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", FirstName: "F", LastName: "L", Role: role, Active: true}
	if role == models.RoleDoctor {
		u.DoctorProfile = &models.DoctorProfile{Specialty: "GP", LicenseNumber: "LIC-" + email}
	}
	if err := s.Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestUserStoreLookups(t *testing.T) {
	users := NewUserStore(testutil.NewDB(t))
	ctx := context.Background()
	d := seedUser(t, users, "d@x.com", models.RoleDoctor)

	got, err := users.GetByEmail(ctx, "d@x.com")
	if err != nil || got.ID != d.ID || got.DoctorProfile == nil {
		t.Fatalf("get by email: %+v %v", got, err)
	}
	if _, err := users.GetByEmail(ctx, "D@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("email lookup must be exact: %v", err)
	}
	if _, err := users.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: %v", err)
	}

	dup := &models.User{Email: "d@x.com", PasswordHash: "x", FirstName: "F", LastName: "L", Role: models.RolePatient}
	if err := users.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: %v", err)
	}
}

func TestRotateRefreshTokenHash(t *testing.T) {
	users := NewUserStore(testutil.NewDB(t))
	ctx := context.Background()
	u := seedUser(t, users, "p@x.com", models.RolePatient)

	if err := users.SetRefreshTokenHash(ctx, u.ID, "h1"); err != nil {
		t.Fatal(err)
	}
	ok, err := users.RotateRefreshTokenHash(ctx, u.ID, "h1", "h2")
	if err != nil || !ok {
		t.Fatalf("rotate: ok=%v err=%v", ok, err)
	}
	ok, err = users.RotateRefreshTokenHash(ctx, u.ID, "h1", "h3")
	if err != nil || ok {
		t.Fatalf("stale rotate: ok=%v err=%v", ok, err)
	}
}

func TestAppointmentStoreOverlapAndStale(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserStore(gdb)
	appts := NewAppointmentStore(gdb)
	ctx := context.Background()
	p := seedUser(t, users, "p@x.com", models.RolePatient)
	d := seedUser(t, users, "d@x.com", models.RoleDoctor)

	start := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	a := &models.Appointment{PatientID: p.ID, DoctorID: d.ID, StartTime: start, EndTime: start.Add(30 * time.Minute),
		Status: models.StatusPending, Reason: "x"}
	if err := appts.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	taken, err := appts.HasOverlap(ctx, d.ID, start.Add(15*time.Minute), start.Add(45*time.Minute), "")
	if err != nil || !taken {
		t.Errorf("overlap: taken=%v err=%v", taken, err)
	}
	taken, _ = appts.HasOverlap(ctx, d.ID, start, start.Add(30*time.Minute), a.ID)
	if taken {
		t.Error("appointment must not conflict with itself")
	}
	taken, _ = appts.HasOverlap(ctx, d.ID, start.Add(30*time.Minute), start.Add(time.Hour), "")
	if taken {
		t.Error("adjacent interval reported as overlap")
	}

	notADoctor := &models.Appointment{PatientID: p.ID, DoctorID: p.ID, StartTime: start, EndTime: start.Add(time.Hour),
		Status: models.StatusPending, Reason: "x"}
	if err := appts.Create(ctx, notADoctor); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-doctor: %v", err)
	}

	stale := *a
	if err := appts.UpdateStatus(ctx, a, models.StatusConfirmed, nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := appts.UpdateStatus(ctx, &stale, models.StatusCancelled, nil); !errors.Is(err, ErrStale) {
		t.Errorf("stale update: %v", err)
	}

	if err := appts.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: %v", err)
	}
}
