package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// CachedTaskRepository кэширует полный список задач владельца в Redis.
// Любая запись по владельцу сбрасывает его ключ.
type CachedTaskRepository struct {
	ITaskRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedTaskRepository(base ITaskRepository, client *redis.Client, ttl time.Duration) *CachedTaskRepository {
	if base == nil {
		panic("repository.NewCachedTaskRepository: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedTaskRepository{
		ITaskRepository: base,
		redis:           client,
		ttl:             ttl,
	}
}

func (c *CachedTaskRepository) List(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
	// кэшируем только полный список доски
	if status != "" {
		return c.ITaskRepository.List(ctx, ownerID, status)
	}

	if tasks, ok := c.load(ctx, ownerID); ok {
		return tasks, nil
	}

	tasks, err := c.ITaskRepository.List(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}

	c.store(ctx, ownerID, tasks)
	return tasks, nil
}

func (c *CachedTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	created, err := c.ITaskRepository.Create(ctx, task)
	c.Evict(ctx, task.OwnerID)
	return created, err
}

func (c *CachedTaskRepository) Update(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error) {
	task, err := c.ITaskRepository.Update(ctx, id, ownerID, updates)
	c.Evict(ctx, ownerID)
	return task, err
}

func (c *CachedTaskRepository) UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
	err := c.ITaskRepository.UpdateOrders(ctx, ownerID, assignments)
	c.Evict(ctx, ownerID)
	return err
}

func (c *CachedTaskRepository) Delete(ctx context.Context, id string, ownerID int) error {
	err := c.ITaskRepository.Delete(ctx, id, ownerID)
	c.Evict(ctx, ownerID)
	return err
}

func (c *CachedTaskRepository) Evict(ctx context.Context, ownerID int) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, tasksCacheKey(ownerID)).Err()
}

func (c *CachedTaskRepository) load(ctx context.Context, ownerID int) ([]entity.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(ownerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// при ошибке Redis идем в базу
			_ = c.redis.Del(ctx, tasksCacheKey(ownerID)).Err()
		}
		return nil, false
	}
	var tasks []entity.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(ownerID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *CachedTaskRepository) store(ctx context.Context, ownerID int, tasks []entity.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey(ownerID), data, c.ttl).Err()
}

func tasksCacheKey(ownerID int) string {
	return "tasks:" + strconv.Itoa(ownerID)
}
