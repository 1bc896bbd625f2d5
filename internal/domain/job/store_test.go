package job

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Both drivers must behave identically from the tracker's point of
// view, so they share one suite.
func TestStoreDrivers(t *testing.T) {
	drivers := []struct {
		name  string
		setup func(t *testing.T) Store
	}{
		{
			name: "memory",
			setup: func(t *testing.T) Store {
				return NewMemoryStore()
			},
		},
		{
			name: "redis",
			setup: func(t *testing.T) Store {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { client.Close() })
				return NewRedisStore(client)
			},
		},
	}

	for _, driver := range drivers {
		t.Run(driver.name, func(t *testing.T) {
			ctx := context.Background()
			store := driver.setup(t)

			if snap, err := store.Get(ctx, "missing"); err != nil || snap != nil {
				t.Fatalf("Get(missing) = %v, %v, want nil, nil", snap, err)
			}

			want := Snapshot{
				ID:        "job-1",
				SourceURL: "https://example.com/a.mp3",
				Status:    StatusFetching,
				Progress:  20,
				StartedAt: time.Now().Truncate(time.Second),
				UpdatedAt: time.Now().Truncate(time.Second),
			}
			if err := store.Put(ctx, want); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, err := store.Get(ctx, "job-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ID != want.ID || got.Status != want.Status || got.Progress != want.Progress {
				t.Errorf("Get() = %+v, want %+v", got, want)
			}

			want.Progress = 60
			want.Status = StatusTranscribing
			if err := store.Put(ctx, want); err != nil {
				t.Fatalf("Put(update) error = %v", err)
			}
			got, _ = store.Get(ctx, "job-1")
			if got.Progress != 60 {
				t.Errorf("progress = %d after update, want 60", got.Progress)
			}

			if err := store.Delete(ctx, "job-1"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if snap, _ := store.Get(ctx, "job-1"); snap != nil {
				t.Errorf("Get() after delete = %+v, want nil", snap)
			}
		})
	}
}
