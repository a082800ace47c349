package logsift

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	static        map[string]string
	dirs          []dirSpec
	redisAddrs    []string
	redisUsername string
	redisPassword string
	redisDB       int
	redisPrefix   string
	workers       int
	maxFileBytes  int64
}

type dirSpec struct {
	path    string
	pattern string
}

// WithDiagnostics serves fixed in-memory texts keyed by diagnostic name.
func WithDiagnostics(texts map[string]string) Option {
	return func(c *clientConfig) {
		if c.static == nil {
			c.static = make(map[string]string, len(texts))
		}
		for name, text := range texts {
			c.static[name] = text
		}
	}
}

// WithDirectory serves every file in the directory as a diagnostic named
// after its base name. Files are re-read on every search.
func WithDirectory(path string) Option {
	return func(c *clientConfig) {
		c.dirs = append(c.dirs, dirSpec{path: path})
	}
}

// WithDirectoryPattern is WithDirectory restricted to file names matching
// pattern, in filepath.Match syntax.
func WithDirectoryPattern(path, pattern string) Option {
	return func(c *clientConfig) {
		c.dirs = append(c.dirs, dirSpec{path: path, pattern: pattern})
	}
}

// WithRedis serves diagnostics stored as string values on a Redis server,
// keyed under the diagnostic prefix.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.redisAddrs = append(c.redisAddrs, addrs...)
	}
}

// WithRedisAuth sets credentials for the Redis source.
func WithRedisAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.redisUsername = username
		c.redisPassword = password
	}
}

// WithRedisDB selects a logical Redis database.
func WithRedisDB(db int) Option {
	return func(c *clientConfig) {
		c.redisDB = db
	}
}

// WithRedisPrefix overrides the key prefix diagnostics are read from. The
// diagnostic name is the key with the prefix stripped.
func WithRedisPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.redisPrefix = prefix
	}
}

// WithWorkers caps how many diagnostics a search scans concurrently.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *clientConfig) {
		c.workers = n
	}
}

// WithMaxFileSize caps the size of files read from directory sources, in
// bytes. Oversized files fail to produce text and are absent from results.
// Zero means no cap.
func WithMaxFileSize(bytes int64) Option {
	return func(c *clientConfig) {
		c.maxFileBytes = bytes
	}
}
