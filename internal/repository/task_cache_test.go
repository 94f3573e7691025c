package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubTaskRepository struct {
	ITaskRepository
	listFn         func(ctx context.Context, ownerID int, status string) ([]entity.Task, error)
	updateOrdersFn func(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error
}

func (s *stubTaskRepository) List(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, ownerID, status)
}

func (s *stubTaskRepository) UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
	if s.updateOrdersFn == nil {
		return errors.New("unexpected UpdateOrders call")
	}
	return s.updateOrdersFn(ctx, ownerID, assignments)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedListMissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	due := entity.NewDate(2026, time.March, 3)
	expected := []entity.Task{{ID: "t1", OwnerID: 7, Title: "Prepare board deck", Status: entity.StatusInbox, DueDate: &due}}

	var calls int
	repo := NewCachedTaskRepository(&stubTaskRepository{
		listFn: func(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
			calls++
			if ownerID != 7 {
				t.Fatalf("unexpected owner id: %d", ownerID)
			}
			return expected, nil
		},
	}, client, time.Minute)

	for i := 0; i < 2; i++ {
		tasks, err := repo.List(ctx, 7, "")
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != expected[0].Title {
			t.Fatalf("unexpected tasks: %#v", tasks)
		}
		if tasks[0].DueDate == nil || tasks[0].DueDate.String() != "2026-03-03" {
			t.Fatalf("unexpected due date: %v", tasks[0].DueDate)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(tasksCacheKey(7)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestCachedListWithStatusBypassesCache(t *testing.T) {
	mr, client := newTestRedis(t)

	repo := NewCachedTaskRepository(&stubTaskRepository{
		listFn: func(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
			return []entity.Task{}, nil
		},
	}, client, time.Minute)

	if _, err := repo.List(context.Background(), 1, string(entity.StatusReview)); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if mr.Exists(tasksCacheKey(1)) {
		t.Fatal("expected no cache entry for filtered list")
	}
}

func TestCachedUpdateOrdersEvicts(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	repo := NewCachedTaskRepository(&stubTaskRepository{
		listFn: func(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
			return []entity.Task{{ID: "t1"}}, nil
		},
		updateOrdersFn: func(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
			return nil
		},
	}, client, time.Minute)

	if _, err := repo.List(ctx, 3, ""); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !mr.Exists(tasksCacheKey(3)) {
		t.Fatal("expected cache entry after list")
	}

	if err := repo.UpdateOrders(ctx, 3, []entity.OrderAssignment{{TaskID: "t1", Order: 0}}); err != nil {
		t.Fatalf("update orders: %v", err)
	}
	if mr.Exists(tasksCacheKey(3)) {
		t.Fatal("expected cache evicted after write")
	}
}

func TestCachedListCorruptEntryFallsBack(t *testing.T) {
	mr, client := newTestRedis(t)
	if err := mr.Set(tasksCacheKey(5), "not-json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	var calls int
	repo := NewCachedTaskRepository(&stubTaskRepository{
		listFn: func(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
			calls++
			return []entity.Task{}, nil
		},
	}, client, time.Minute)

	if _, err := repo.List(context.Background(), 5, ""); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected backend call, got %d", calls)
	}
}
