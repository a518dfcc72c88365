// 配置文件变更监听器实现。
//
// 轮询配置文件的修改时间，变化稳定后重新加载并回调。
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReloadFunc 在配置成功重新加载后调用
type ReloadFunc func(oldConfig, newConfig *Config)

// Watcher 监听配置文件并在变更时重新加载
type Watcher struct {
	mu sync.Mutex

	loader   *Loader
	path     string
	interval time.Duration
	debounce time.Duration
	current  *Config
	lastMod  time.Time
	pending  time.Time

	pendingSince time.Time

	callbacks []ReloadFunc
	logger    *zap.Logger
}

// WatcherOption 配置 Watcher
type WatcherOption func(*Watcher)

// WithPollInterval 设置轮询间隔
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithDebounceDelay 设置防抖延迟，修改时间需稳定这么久才触发重载
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatcherLogger 设置日志器
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// NewWatcher 创建 Watcher，current 是当前生效的配置
func NewWatcher(loader *Loader, current *Config, opts ...WatcherOption) (*Watcher, error) {
	if loader == nil || loader.configPath == "" {
		return nil, errors.New("config watcher requires a loader with a config path")
	}
	w := &Watcher{
		loader:   loader,
		path:     loader.configPath,
		interval: time.Second,
		debounce: 100 * time.Millisecond,
		current:  current,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("component", "config_watcher"), zap.String("path", w.path))

	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat path %s: %w", w.path, err)
	}
	return w, nil
}

// OnReload 注册重载回调
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current 返回当前生效的配置
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run 轮询直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("config watcher started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check 检查一次文件状态，修改时间稳定超过防抖延迟后重新加载
func (w *Watcher) Check() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	mod := info.ModTime()
	if !mod.After(w.lastMod) {
		w.mu.Unlock()
		return
	}
	if !mod.Equal(w.pending) {
		w.pending = mod
		w.pendingSince = time.Now()
	}
	if time.Since(w.pendingSince) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastMod = mod
	w.pending = time.Time{}
	w.mu.Unlock()

	w.reload()
}

func (w *Watcher) reload() {
	next, err := w.loader.Load()
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		w.logger.Warn("config reload rejected, keeping current config", zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	callbacks := make([]ReloadFunc, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("config reloaded")
	for _, fn := range callbacks {
		fn(prev, next)
	}
}
