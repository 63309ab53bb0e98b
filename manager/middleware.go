package manager

import (
	"context"

	"github.com/jonwraymond/toolcache/cache"
)

// Executor is the function signature for tool execution.
type Executor func(ctx context.Context, tool cache.ToolIdentity, args map[string]any) (any, error)

// Middleware wraps tool execution with result caching. Keys derive
// from the tool identity and arguments only, so recreating a tool
// instance between calls cannot change where results land.
type Middleware struct {
	manager  *Manager
	keyer    cache.Keyer
	policy   cache.Policy
	skipRule cache.SkipRule
}

// NewMiddleware creates a caching middleware over the manager.
// A nil keyer uses the default SHA-256 keyer; a nil skipRule uses
// DefaultSkipRule.
func NewMiddleware(m *Manager, keyer cache.Keyer, policy cache.Policy, skipRule cache.SkipRule) *Middleware {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if skipRule == nil {
		skipRule = cache.DefaultSkipRule
	}
	return &Middleware{
		manager:  m,
		keyer:    keyer,
		policy:   policy,
		skipRule: skipRule,
	}
}

// Execute runs the tool with caching.
// On cache hit, returns the cached result without calling executor.
// On cache miss, calls executor and caches the result.
// Errors are NOT cached.
func (mw *Middleware) Execute(
	ctx context.Context,
	tool cache.ToolIdentity,
	args map[string]any,
	tags []string,
	executor Executor,
) (any, error) {
	if !mw.policy.AllowUnsafe && mw.skipRule(tool, tags) {
		return executor(ctx, tool, args)
	}

	key, err := mw.keyer.Key(tool, args)
	if err != nil {
		// Key generation failed - execute without caching
		return executor(ctx, tool, args)
	}

	ttl := mw.policy.EffectiveTTL(0)
	return mw.manager.GetOrCompute(ctx, tool.Name, tool.Version, key, ttl, func(ctx context.Context) (any, error) {
		return executor(ctx, tool, args)
	})
}
