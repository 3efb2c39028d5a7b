package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository_GetSet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on missing = %v, want ErrNotFound", err)
	}

	if err := repo.Set("mirror", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("mirror", "false"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := repo.Get("mirror")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "false" {
		t.Errorf("Get() = %q, want false", got)
	}

	if err := repo.Delete("mirror"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("mirror"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice = %v, want ErrNotFound", err)
	}
}

func TestSettingsRepository_JSON(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	type quality struct {
		Width    int  `json:"width"`
		MaxHands int  `json:"maxHands"`
		Smooth   bool `json:"smooth"`
	}

	in := quality{Width: 640, MaxHands: 1, Smooth: true}
	if err := repo.SetJSON("quality", in); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var out quality
	if err := repo.GetJSON("quality", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out != in {
		t.Errorf("GetJSON() = %+v, want %+v", out, in)
	}

	if err := repo.Set("broken", "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.GetJSON("broken", &out); err == nil {
		t.Error("expected decode error")
	}
	if err := repo.GetJSON("absent", &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJSON() on missing = %v, want ErrNotFound", err)
	}
}
