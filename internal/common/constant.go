package common

// UserIDParam is the query/body parameter that scopes every record to its
// owner. The services authorize by ownership, not by session token.
const UserIDParam = "userId"

// HealthPath is served by every service and probed by the client watcher.
const HealthPath = "/health"
