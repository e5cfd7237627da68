package http

import (
	"container/list"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])

	// Check if expired
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: now.Add(c.ttl),
	}

	// Check if key already exists
	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	// Add new item
	elem := c.lru.PushFront(item)
	c.items[key] = elem

	// Evict if over capacity
	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// DeletePrefix drops every entry whose key starts with prefix. Used to
// invalidate all cached months of one user after a mutation, since a
// recurring template change affects every projected month.
func (c *lruCache[T]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if strings.HasPrefix(item.key, prefix) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

type Server struct {
	http.Server

	store       budget.Store
	txService   *services.TransactionService
	rateLimiter *ratelimit.Limiter

	// LRU caches for derived month data with eviction policy
	overviewCache *lruCache[core.FinanceOverview]
	expensesCache *lruCache[[]core.Transaction]
	incomeCache   *lruCache[core.MonthlyIncomeDetails]

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once

	// now is swappable in tests
	now func() time.Time
}

const cacheTTL = 30 * time.Second

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store budget.Store, txService *services.TransactionService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:            store,
		txService:        txService,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		overviewCache:    newLRUCache[core.FinanceOverview](100, cacheTTL),
		expensesCache:    newLRUCache[[]core.Transaction](200, cacheTTL),
		incomeCache:      newLRUCache[core.MonthlyIncomeDetails](200, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
		now:              time.Now,
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/overview", s.requireUser(s.handleOverview))
	mux.HandleFunc("GET /api/months/{month}/expenses", s.requireUser(s.handleMonthExpenses))
	mux.HandleFunc("GET /api/months/{month}/income", s.requireUser(s.handleMonthIncome))
	mux.HandleFunc("GET /api/solvency", s.requireUser(s.handleSolvency))
	mux.HandleFunc("GET /api/allowance", s.requireUser(s.handleAllowance))

	mux.HandleFunc("GET /api/transactions", s.requireUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.requireUser(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireUser(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireUser(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/income-config", s.requireUser(s.handleGetIncomeConfig))
	mux.HandleFunc("PUT /api/income-config", s.requireUser(s.handlePutIncomeConfig))

	mux.HandleFunc("GET /api/goals", s.requireUser(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.requireUser(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/{id}", s.requireUser(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.requireUser(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.requireUser(s.handleDeleteGoal))
	mux.HandleFunc("GET /api/goals/{id}/timeline", s.requireUser(s.handleGoalTimeline))

	// Middleware chain: trace ids and request logging outermost, then
	// rate limiting for mutations.
	traceMw := trace.NewMiddleware(extractClientIP)
	s.Server.Handler = traceMw.Middleware(s.withWriteRateLimit(mux))

	return s
}

// withWriteRateLimit applies the per-IP limiter to mutating methods only.
func (s *Server) withWriteRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.Allow(extractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientIP resolves the client address, considering proxies.
func extractClientIP(r *http.Request) string {
	clientIP := r.Header.Get("X-Forwarded-For")
	if clientIP == "" {
		clientIP = r.Header.Get("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = r.RemoteAddr
	}
	return clientIP
}

// startCacheCleanup runs periodic cleanup for the derived-data caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.overviewCache.CleanExpired()
			s.expensesCache.CleanExpired()
			s.incomeCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateUser drops every cached derivation for one user. Mutations can
// move money between arbitrary months (recurring templates project forward),
// so per-month invalidation would be wrong.
func (s *Server) invalidateUser(userID string) {
	s.overviewCache.Delete(userID)
	s.expensesCache.DeletePrefix(userID + "|")
	s.incomeCache.DeletePrefix(userID + "|")
}

func monthCacheKey(userID string, month time.Time) string {
	return userID + "|" + core.MonthKey(month)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
