/*
Package demo provides the scripted component tree that stands in for the UI.

A Scenario mounts Parent, Kid, Grandkid and Kid2, then replays user
interactions. Every lifecycle step is logged through a console.Console in the
order a React-style renderer runs it: the render phase walks the tree top-down,
the layout phase (ref callbacks and layout effects) runs bottom-up, then the
passive effects run bottom-up. The with-compiler variant memoizes children and
ref callbacks, so a parent update no longer re-renders untouched children.
*/
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/console"
	"github.com/google/uuid"
)

// Variant selects the build the scenario imitates.
type Variant string

const (
	WithCompiler    Variant = config.DemoVariantWithCompiler
	WithoutCompiler Variant = config.DemoVariantWithoutCompiler
)

// Config contains the scenario configuration.
type Config struct {
	Variant      Variant       // Compiler or not.
	Interval     time.Duration // Pause between interactions.
	Interactions int           // Number of interactions replayed after mount.
}

// NewConfig extracts the demo section of the application configuration.
func NewConfig(cfg *config.AppConfig) *Config {
	return &Config{
		Variant:      Variant(cfg.Demo.Variant),
		Interval:     cfg.GetDemoInterval(),
		Interactions: cfg.Demo.Interactions,
	}
}

// Scenario is one mounted component tree.
type Scenario struct {
	cfg       *Config
	out       console.Console
	root      *component
	byName    map[string]*component
	context   int
	step      int
	SessionID string
}

// New builds the tree. Nothing is logged until Mount.
func New(cfg *Config, out console.Console) *Scenario {
	if out == nil {
		out = console.Discard
	}
	grandkid := &component{name: "Grandkid", marker: "🟪", usesContext: true}
	kid := &component{name: "Kid", marker: "🟩", children: []*component{grandkid}}
	kid2 := &component{name: "Kid2", marker: "🟧", usesContext: true, concurrent: true}
	parent := &component{name: "Parent", marker: "🟦", usesContext: true, children: []*component{kid, kid2}}

	return &Scenario{
		cfg:  cfg,
		out:  out,
		root: parent,
		byName: map[string]*component{
			parent.name: parent, kid.name: kid, kid2.name: kid2, grandkid.name: grandkid,
		},
		SessionID: uuid.NewString(),
	}
}

// Variant returns the configured variant.
func (s *Scenario) Variant() Variant {
	return s.cfg.Variant
}

func (s *Scenario) memoized() bool {
	return s.cfg.Variant == WithCompiler
}

// label is the prefix of every message of c.
func (s *Scenario) label(c *component) string {
	if s.memoized() {
		return fmt.Sprintf("%s %s (Compiler):", c.marker, c.name)
	}
	return fmt.Sprintf("%s %s:", c.marker, c.name)
}

// Mount renders and commits the whole tree once.
func (s *Scenario) Mount() {
	s.out.Info(fmt.Sprintf("▶ %s session %s: mount", s.cfg.Variant, s.SessionID))
	s.commit(nil, false)
}

// Prerender runs only the render phase of the first mount, as a server
// renderer does: no ref callbacks and no effects. The tree stays unmounted.
func (s *Scenario) Prerender() {
	s.out.Info(fmt.Sprintf("▶ %s session %s: server pass", s.cfg.Variant, s.SessionID))
	var rendered []*component
	s.render(s.root, nil, false, false, &rendered)
}

// Interact replays interaction number i. Interactions cycle through:
// Parent increments its count, Kid increments its reducer, Kid2 increments its
// count in a transition, Parent increments the context.
func (s *Scenario) Interact(i int) {
	switch i % 4 {
	case 0:
		p := s.byName["Parent"]
		s.out.Log(s.label(p), "onClick (Increment Count) triggered")
		p.setCount(p.count + 1)
		s.commit(p, false)
	case 1:
		k := s.byName["Kid"]
		s.out.Log(s.label(k), "onClick (Increment Reducer) triggered")
		k.dispatch("increment")
		s.commit(k, false)
	case 2:
		k2 := s.byName["Kid2"]
		next := k2.count + 1
		s.out.Log(s.label(k2), "onClick (Increment Count) triggered")
		s.out.Log(s.label(k2), "startTransition async callback ran")
		s.out.Log(s.label(k2), "addOptimisticCount called with:", next)
		k2.optimistic = next
		s.commit(k2, false)
		s.out.Log(s.label(k2), "Promise awaited, setting count to:", next)
		k2.setCount(next)
		s.commit(k2, false)
	case 3:
		p := s.byName["Parent"]
		s.out.Log(s.label(p), "onClick (Increment Context) triggered")
		s.context++
		s.commit(nil, true)
	}
	s.step++
}

// Steps returns the number of interactions replayed so far.
func (s *Scenario) Steps() int {
	return s.step
}

// Run mounts the tree then replays the configured interactions, waiting
// Interval before each one. It returns ctx.Err() if interrupted.
func (s *Scenario) Run(ctx context.Context) error {
	s.Mount()
	for i := 0; i < s.cfg.Interactions; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.Interval):
		}
		s.Interact(i)
	}
	return nil
}

// commit runs one render and commit cycle. trigger is the component whose own
// state changed; contextChanged re-renders every context consumer.
func (s *Scenario) commit(trigger *component, contextChanged bool) {
	var rendered []*component
	s.render(s.root, trigger, contextChanged, false, &rendered)

	for _, c := range rendered {
		s.layoutEffects(c)
	}
	for _, c := range rendered {
		s.passiveEffects(c, contextChanged)
	}
	for _, c := range rendered {
		c.settle(s.context)
	}
}

// render walks the tree top-down and appends rendered components to out in
// post-order, the order their effects run in.
func (s *Scenario) render(c *component, trigger *component, contextChanged, parentRendered bool, out *[]*component) {
	should := !c.mounted ||
		c == trigger ||
		(contextChanged && c.usesContext) ||
		(parentRendered && !s.memoized())
	if should {
		s.renderBody(c)
	}
	for _, child := range c.children {
		s.render(child, trigger, contextChanged, should, out)
	}
	if should {
		*out = append(*out, c)
	}
}

func (s *Scenario) renderBody(c *component) {
	l := s.label(c)
	if !c.mounted {
		s.out.Log(l, "useState initializer ran")
		s.out.Log(l, "useReducer init function ran, initialArg:", 0)
	}
	if c.pendingAction != "" {
		s.out.Log(l, "reducer ran, state:", c.reducer-1, "action:", c.pendingAction)
	}
	s.out.Log(l, "useReducer ran, state:", c.reducer)
	if !c.mounted || c.countChanged {
		s.out.Log(l, "useMemo ran, count:", c.count)
	}
	if c.usesContext {
		s.out.Log(l, "useContext ran, contextValue:", s.context)
	}
	if c.concurrent {
		optimistic := c.count
		if c.optimistic > optimistic {
			optimistic = c.optimistic
		}
		s.out.Log(l, "useTransition ran, isPending:", c.optimistic > c.count)
		s.out.Log(l, "useOptimistic (count) ran, count:", c.count, "optimisticCount:", optimistic)
		if !s.memoized() || !c.mounted || c.countChanged {
			s.out.Log(l, "useCallback (handleIncrementCount) ran")
		}
	}
	s.out.Log(l, "render")
}

func (s *Scenario) layoutEffects(c *component) {
	l := s.label(c)
	if !c.mounted {
		s.out.Log(l, "ref callback ran, element:", "div")
		s.out.Log(l, "useLayoutEffect ran")
		s.out.Log(l, "useLayoutEffect (mount) ran")
		s.out.Log(l, "useLayoutEffect (count changed) ran, count:", c.count)
		return
	}
	// An inline ref callback is a new function on every render unless memoized.
	if !s.memoized() {
		s.out.Log(l, "ref callback ran, element:", nil)
		s.out.Log(l, "ref callback ran, element:", "div")
	}
	s.out.Log(l, "useLayoutEffect cleanup")
	s.out.Log(l, "useLayoutEffect ran")
	if c.countChanged {
		s.out.Log(l, "useLayoutEffect (count changed) ran, count:", c.count)
	}
}

func (s *Scenario) passiveEffects(c *component, contextChanged bool) {
	l := s.label(c)
	if !c.mounted {
		s.out.Log(l, "useEffect ran")
		s.out.Log(l, "useEffect (mount) ran")
		s.out.Log(l, "useEffect (count changed) ran, count:", c.count)
		if c.usesContext {
			s.out.Log(l, "useEffect (contextValue changed) ran, contextValue:", s.context)
		}
		return
	}
	s.out.Log(l, "useEffect cleanup")
	s.out.Log(l, "useEffect ran")
	if c.countChanged {
		s.out.Log(l, "useEffect (count changed) ran, count:", c.count)
	}
	if contextChanged && c.usesContext && c.seenContext != s.context {
		s.out.Log(l, "useEffect (contextValue changed) ran, contextValue:", s.context)
	}
}
