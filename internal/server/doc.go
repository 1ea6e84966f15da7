// Package server provides HTTP routing, middleware, and the admin handler for the catalog migration.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. Sub-routers
// with their own middleware stacks are attached with [BasicRouter.Mount].
//
// # Admin Handler
//
// [AdminHandler] exposes the [services.Admin] operations under /admin. Migration endpoints take a
// dryRun query parameter that defaults to true. A migration that fails still answers 200 with
// success set to false; only store read failures answer 500.
//
// # Middleware
//
//   - [Logging] logs every request with its status and duration
//   - [RateLimit] answers 429 once the token bucket is empty
//   - [Serialize] holds a [RunLock] for the duration of a migration and answers 409 when busy
//
// # Run Locks
//
// [MemoryLock] serializes runs inside one process. [RedisLock] serializes them across processes
// sharing a Redis instance, with a TTL so a crashed holder cannot block runs forever.
package server
