package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrCacheMiss 緩存未命中
var ErrCacheMiss = errors.New("cache miss")

// Store 結構化結果緩存，鍵為食譜內容
type Store interface {
	Get(ctx context.Context, content string) (string, error)
	Set(ctx context.Context, content, value string) error
	Close() error
}

// NewStore 依設定建立緩存，關閉時返回 nil
func NewStore(cfg *config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		s, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Manager 記憶體緩存管理器
type Manager struct {
	config *config.CacheConfig
	mu     sync.Mutex
	store  map[string]cacheEntry
	stats  cacheStats
	now    func() time.Time
	done   chan struct{}
	once   sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建新的緩存管理器並啟動清理協程
func NewManager(cfg *config.CacheConfig) *Manager {
	m := newManager(cfg, time.Now)

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

func newManager(cfg *config.CacheConfig, now func() time.Time) *Manager {
	return &Manager{
		config: cfg,
		store:  make(map[string]cacheEntry),
		now:    now,
		done:   make(chan struct{}),
	}
}

// Get 獲取緩存值
func (m *Manager) Get(ctx context.Context, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := generateKey(content)

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", ErrCacheMiss
	}

	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", ErrCacheMiss
	}

	entry.lastAccess = now
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	common.LogDebug("快取命中", zap.String("鍵", key))
	return entry.value, nil
}

// Set 設置緩存值，滿載時先清理過期項目再淘汰最少使用的項目
func (m *Manager) Set(ctx context.Context, content, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := generateKey(content)

	if _, exists := m.store[key]; !exists && len(m.store) >= m.config.MaxSize {
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))
		}
		for len(m.store) >= m.config.MaxSize {
			m.evictLRU()
		}
	}

	now := m.now()
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.config.TTL),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// generateKey 生成緩存鍵
func generateKey(content string) string {
	return "text:" + common.HashString(content)
}

// startCleanup 啟動清理過期緩存的協程
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫者需持有鎖
func (m *Manager) cleanup() int {
	now := m.now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰訪問次數最少、最久未訪問的項目
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (m *Manager) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 關閉緩存管理器，並記錄最終統計
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.done) })

	stats := m.Stats()

	m.mu.Lock()
	m.store = make(map[string]cacheEntry)
	m.mu.Unlock()

	common.LogInfo("快取管理員已關閉",
		zap.Any("命中次數", stats["hits"]),
		zap.Any("未命中次數", stats["misses"]),
		zap.Any("淘汰次數", stats["evictions"]),
		zap.Any("命中率", stats["hit_ratio"]),
	)
	return nil
}
