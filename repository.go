package taskcore

import (
	"context"
	"fmt"
	"net/url"

	"github.com/taskcore/taskcore/cache"
)

// sortAllowList maps every accepted sort spec to itself. Anything else
// silently falls back to defaultSort — a bogus sort is never an error.
var sortAllowList = map[string]struct{}{
	"-createdAt": {},
	"createdAt":  {},
	"-dueDate":   {},
	"dueDate":    {},
}

const (
	defaultSort = "-createdAt"
	defaultPage = 1
)

// taskRepository mediates all task list/stats reads between the cache
// and the durable store. It is the sole writer and reader of the task
// cache, owning key derivation and invalidation.
//
// Invalidation is deliberately asymmetric: task writes delete only the
// owner's stats key. List entries (keyed by the full query signature)
// are left to expire by TTL.
type taskRepository struct {
	cache        *cache.Cache
	store        TaskStore
	prefix       string
	defaultLimit int
	metrics      *Metrics
}

func newTaskRepository(c *cache.Cache, store TaskStore, prefix string, defaultLimit int) *taskRepository {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &taskRepository{
		cache:        c,
		store:        store,
		prefix:       prefix,
		defaultLimit: defaultLimit,
	}
}

// normalize applies the documented query defaults and the sort
// allow-list fallback.
func (r *taskRepository) normalize(q ListQuery) ListQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = r.defaultLimit
	}
	if _, ok := sortAllowList[q.Sort]; !ok {
		q.Sort = defaultSort
	}
	return q
}

// listKey derives the deterministic, order-sensitive cache key for one
// list query. Every parameter that can change the result participates.
func (r *taskRepository) listKey(ownerID string, q ListQuery) string {
	return fmt.Sprintf(
		"%s:%s:p=%d:l=%d:s=%s:pr=%s:q=%s:sort=%s",
		r.prefix, ownerID, q.Page, q.Limit, q.Status, q.Priority,
		url.QueryEscape(q.Search), q.Sort,
	)
}

// statsKey derives the single aggregate-stats key per owner.
func (r *taskRepository) statsKey(ownerID string) string {
	return fmt.Sprintf("%s:stats:%s", r.prefix, ownerID)
}

func (r *taskRepository) metricInc(id MetricID) {
	if r.metrics != nil {
		r.metrics.Inc(id)
	}
}

// ReadList serves one page of the owner's tasks, from cache when
// possible. On a miss it queries the store, caches the page with the
// default TTL, and returns it. Cache trouble is treated as a miss.
func (r *taskRepository) ReadList(ctx context.Context, ownerID string, q ListQuery) (*TaskPage, error) {
	q = r.normalize(q)
	key := r.listKey(ownerID, q)

	var page TaskPage
	if r.cache.Get(ctx, key, &page) {
		r.metricInc(MetricCacheHit)
		page.Cached = true
		return &page, nil
	}
	r.metricInc(MetricCacheMiss)

	filter := TaskFilter{
		OwnerID:  ownerID,
		Status:   q.Status,
		Priority: q.Priority,
		Search:   q.Search,
	}
	skip := (q.Page - 1) * q.Limit

	tasks, err := r.store.FindTasks(ctx, filter, q.Sort, skip, q.Limit)
	if err != nil {
		return nil, err
	}
	total, err := r.store.CountTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		pages++
	}
	if tasks == nil {
		tasks = []*Task{}
	}

	page = TaskPage{
		Meta: ListMeta{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: pages,
		},
		Tasks: tasks,
	}

	r.cache.Set(ctx, key, page)
	return &page, nil
}

// ReadStats serves the owner's status counts, from cache when possible.
func (r *taskRepository) ReadStats(ctx context.Context, ownerID string) (StatusCounts, bool, error) {
	key := r.statsKey(ownerID)

	var counts StatusCounts
	if r.cache.Get(ctx, key, &counts) {
		r.metricInc(MetricCacheHit)
		return counts, true, nil
	}
	r.metricInc(MetricCacheMiss)

	raw, err := r.store.CountTasksByStatus(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	counts = StatusCounts(raw)
	if counts == nil {
		counts = StatusCounts{}
	}

	r.cache.Set(ctx, key, counts)
	return counts, false, nil
}

// InvalidateStats deletes the owner's stats key. Called after every task
// create, update, and delete so aggregate stats are fresh-after-write.
func (r *taskRepository) InvalidateStats(ctx context.Context, ownerID string) {
	r.metricInc(MetricCacheInvalidation)
	r.cache.Del(ctx, r.statsKey(ownerID))
}
