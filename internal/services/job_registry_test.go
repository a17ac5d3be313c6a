package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/models"
)

func TestJobRegistry_Transitions(t *testing.T) {
	t.Parallel()
	reg := newJobRegistry(10, time.Hour)
	job := models.NewJob(models.FetchRequest{URL: "https://example.com/v", Format: models.FormatMP3})
	reg.add(job)

	if got := reg.start(job); got.Status != models.JobStatusRunning {
		t.Fatalf("Expected running, got %s", got.Status)
	}

	artifact := &models.Artifact{Key: job.ID.String() + "/a.mp3", Filename: "a.mp3"}
	snap := reg.succeed(job, artifact, false)
	if snap.Status != models.JobStatusSucceeded || snap.Artifact.Key != artifact.Key {
		t.Fatalf("Expected succeeded with artifact, got %+v", snap)
	}

	// Terminal states are final.
	after := reg.fail(job, errors.New("late failure"))
	if after.Status != models.JobStatusSucceeded || after.Error != "" {
		t.Errorf("Expected finished job to stay succeeded, got %s %q", after.Status, after.Error)
	}
}

func TestJobRegistry_GetReturnsClone(t *testing.T) {
	t.Parallel()
	reg := newJobRegistry(10, time.Hour)
	job := models.NewJob(models.FetchRequest{URL: "u", Format: models.FormatOriginal})
	reg.add(job)
	reg.succeed(job, &models.Artifact{Key: "k/f"}, true)

	got, ok := reg.get(job.ID)
	if !ok {
		t.Fatal("Expected job to be found")
	}
	got.Artifact.Key = "mutated"

	again, _ := reg.get(job.ID)
	if again.Artifact.Key != "k/f" {
		t.Errorf("Expected stored job to be unaffected, got %s", again.Artifact.Key)
	}
	if !again.Cached {
		t.Error("Expected cached flag to be kept")
	}
}

func TestJobRegistry_Expiry(t *testing.T) {
	t.Parallel()
	reg := newJobRegistry(10, 30*time.Millisecond)
	job := models.NewJob(models.FetchRequest{URL: "u", Format: models.FormatOriginal})
	reg.add(job)

	time.Sleep(80 * time.Millisecond)
	if _, ok := reg.get(job.ID); ok {
		t.Error("Expected job to expire")
	}
}

func TestJobRegistry_CapacityEvictsOldest(t *testing.T) {
	t.Parallel()
	reg := newJobRegistry(2, time.Hour)
	first := models.NewJob(models.FetchRequest{URL: "a", Format: models.FormatMP3})
	second := models.NewJob(models.FetchRequest{URL: "b", Format: models.FormatMP3})
	third := models.NewJob(models.FetchRequest{URL: "c", Format: models.FormatMP3})
	reg.add(first)
	reg.add(second)
	reg.add(third)

	if _, ok := reg.get(first.ID); ok {
		t.Error("Expected the oldest job to be evicted past capacity")
	}
	if _, ok := reg.get(third.ID); !ok {
		t.Error("Expected the newest job to be kept")
	}
}

func TestOptionsFromConfig_JobCapacityIndependentOfIndex(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Size = 50
	cfg.Jobs.Capacity = 5000
	cfg.Storage.Retention = "2h"

	opts := OptionsFromConfig(cfg)
	if opts.JobCapacity != 5000 {
		t.Errorf("Expected job capacity 5000, got %d", opts.JobCapacity)
	}
	if opts.JobRetention != 2*time.Hour {
		t.Errorf("Expected job retention 2h, got %v", opts.JobRetention)
	}
}
