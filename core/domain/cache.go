// ABOUTME: Cache key conventions and refresh task model shared by the orchestrator and workers
// ABOUTME: Keeps the persisted layout of the store in one place

package domain

// UpdatedSuffix is appended to a cache key to store its last refresh time.
const UpdatedSuffix = "/updated"

// LockPrefix is prepended to a cache key to form its refresh lock key.
const LockPrefix = "/lock"

// Cache key prefixes for the two page shapes.
const (
	PagesPrefix    = "/pages/"
	CommentsPrefix = "/comments/"
)

// ResourceKind selects the parser used for a cached resource.
type ResourceKind int

const (
	// KindListing is a page of stories
	KindListing ResourceKind = iota
	// KindItem is a story with its comments
	KindItem
)

// String returns a readable name for logs.
func (k ResourceKind) String() string {
	switch k {
	case KindListing:
		return "listing"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Resource identifies a cached upstream page.
type Resource struct {
	// Key is the cache key the parsed value is stored under
	Key string

	// Path is the upstream path, relative to the site root
	Path string

	// Kind decides how the fetched document is parsed
	Kind ResourceKind
}

// UpdatedKey returns the key holding the last refresh timestamp.
func UpdatedKey(key string) string {
	return key + UpdatedSuffix
}

// LockKey returns the key of the refresh lock guarding key.
func LockKey(key string) string {
	return LockPrefix + key
}

// RefreshTask asks a worker to refresh one cached resource.
type RefreshTask struct {
	Resource Resource
}
