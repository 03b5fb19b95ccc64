package assume

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"qualfill/internal/logging"
	"qualfill/internal/quality"
)

// Resolver applies ranked assumption rules to descriptors.
type Resolver struct {
	logger *slog.Logger
	trace  TraceFunc

	prepareMu sync.Mutex
	rules     atomic.Pointer[[]Rule]
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLogger routes rule and decision logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTrace registers an observer for per-slot merge decisions.
func WithTrace(fn TraceFunc) Option {
	return func(r *Resolver) {
		r.trace = fn
	}
}

// NewResolver returns an unprepared resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare builds and ranks the rules for cfg. Any invalid target or quality
// fails the whole call with a *ConfigError and leaves the resolver unprepared.
// A resolver can be prepared only once.
func (r *Resolver) Prepare(cfg Config) error {
	r.prepareMu.Lock()
	defer r.prepareMu.Unlock()
	if r.rules.Load() != nil {
		return ErrAlreadyPrepared
	}

	decls, err := cfg.Declarations()
	if err != nil {
		return err
	}
	rules := make([]Rule, 0, len(decls))
	for _, decl := range decls {
		r.logger.Debug("new assumption",
			logging.String("target", decl.Target),
			logging.String("quality", decl.Quality),
		)
		rule, err := NewRule(decl.Target, decl.Quality)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}

	ranked := Rank(rules)
	for i, rule := range ranked {
		r.logger.Debug("assumption ranked",
			logging.Int("position", i+1),
			logging.String("target", rule.Target()),
			logging.Int("score", Score(rule)),
			logging.String("quality", rule.Fallback().String()),
		)
	}
	r.rules.Store(&ranked)
	return nil
}

// Ready reports whether Prepare has succeeded.
func (r *Resolver) Ready() bool {
	return r.rules.Load() != nil
}

// Rules returns a copy of the ranked rules.
func (r *Resolver) Rules() ([]Rule, error) {
	p := r.rules.Load()
	if p == nil {
		return nil, ErrNotPrepared
	}
	out := make([]Rule, len(*p))
	copy(out, *p)
	return out, nil
}

// Result describes what Apply changed.
type Result struct {
	Matched []string
	Assumed []quality.Slot
}

// AnyAssumed reports whether at least one slot was filled from a rule.
func (r Result) AnyAssumed() bool { return len(r.Assumed) > 0 }

// Apply walks the ranked rules in order and merges every rule whose target
// matches the descriptor as it stands when that rule is evaluated, so earlier
// assumptions can change which later rules match. When a pass assumes
// something, rules that have not matched yet are tried again in ranked order;
// each rule merges at most once. The result is a fixed point, which makes a
// second Apply a no-op.
//
// The first pass alone is the classic single-pass behavior. The extra passes
// can fill more: with hdtv = "720p" ranked below "720p hdtv" = "10bit", an
// hdtv item also picks up 10bit here, where a single pass would stop at
// 720p hdtv.
func (r *Resolver) Apply(d *quality.Descriptor) (Result, error) {
	p := r.rules.Load()
	if p == nil {
		return Result{}, ErrNotPrepared
	}
	var res Result
	if d == nil {
		return res, nil
	}
	rules := *p
	applied := make([]bool, len(rules))
	observe := r.decisionObserver()
	for changed := true; changed; {
		changed = false
		for i, rule := range rules {
			if applied[i] || !rule.Matches(*d) {
				continue
			}
			applied[i] = true
			r.logger.Debug("assumption matched",
				logging.String("target", rule.Target()),
				logging.String("current", d.String()),
			)
			merged, assumed := merge(rule.Target(), *d, rule.Fallback(), observe)
			*d = merged
			res.Matched = append(res.Matched, rule.Target())
			if len(assumed) > 0 {
				res.Assumed = append(res.Assumed, assumed...)
				changed = true
			}
		}
	}
	return res, nil
}

func (r *Resolver) decisionObserver() TraceFunc {
	debug := r.logger.Enabled(context.Background(), slog.LevelDebug)
	if !debug && r.trace == nil {
		return nil
	}
	return func(dec Decision) {
		if debug {
			r.logger.Debug("assumption slot",
				logging.String("target", dec.Rule),
				logging.String("slot", dec.Slot.String()),
				logging.String("current", dec.Current.Name()),
				logging.String("fallback", dec.Fallback.Name()),
				logging.String("action", string(dec.Action)),
			)
		}
		if r.trace != nil {
			r.trace(dec)
		}
	}
}
