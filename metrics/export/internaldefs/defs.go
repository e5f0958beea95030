// Package internaldefs holds the shared metric definitions used by the
// exporter packages. Not intended for direct use by applications.
package internaldefs

import "github.com/taskcore/taskcore"

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   taskcore.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every engine counter in a stable order.
var CounterDefs = []CounterDef{
	{taskcore.MetricRegisterSuccess, "taskcore_register_success_total", "Successful account registrations."},
	{taskcore.MetricRegisterDuplicate, "taskcore_register_duplicate_total", "Registrations rejected for a duplicate email."},
	{taskcore.MetricLoginSuccess, "taskcore_login_success_total", "Successful logins."},
	{taskcore.MetricLoginFailure, "taskcore_login_failure_total", "Logins rejected for bad credentials."},
	{taskcore.MetricRefreshSuccess, "taskcore_refresh_success_total", "Access tokens minted from refresh tokens."},
	{taskcore.MetricRefreshRevoked, "taskcore_refresh_revoked_total", "Refresh attempts with a revoked session."},
	{taskcore.MetricRefreshFailure, "taskcore_refresh_failure_total", "Refresh attempts with an invalid token."},
	{taskcore.MetricLogout, "taskcore_logout_total", "Session revocations via logout."},
	{taskcore.MetricAuthFailure, "taskcore_auth_failure_total", "Requests rejected during identity resolution."},
	{taskcore.MetricPermissionDenied, "taskcore_permission_denied_total", "Task operations rejected by the ownership rule."},
	{taskcore.MetricCacheHit, "taskcore_cache_hit_total", "Task reads served from cache."},
	{taskcore.MetricCacheMiss, "taskcore_cache_miss_total", "Task reads that fell through to the store."},
	{taskcore.MetricCacheInvalidation, "taskcore_cache_invalidation_total", "Stats cache invalidations after task writes."},
	{taskcore.MetricTaskCreated, "taskcore_task_created_total", "Tasks created."},
	{taskcore.MetricTaskUpdated, "taskcore_task_updated_total", "Tasks updated."},
	{taskcore.MetricTaskDeleted, "taskcore_task_deleted_total", "Tasks deleted."},
}
