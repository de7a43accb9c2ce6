package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/ports"
	"repolint/internal/types"
)

// Linter is a static registry of rules.
type Linter struct {
	rules []ports.Rule
	byID  map[string]ports.Rule
}

// NewLinter registers rules in the given order. Rule ids must be unique
// and non-empty.
func NewLinter(rules ...ports.Rule) (*Linter, error) {
	linter := &Linter{byID: map[string]ports.Rule{}}
	for _, rule := range rules {
		id := rule.ID()
		if id == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("rule without id")
		}
		if _, ok := linter.byID[id]; ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("duplicate rule id %q", id))
		}
		linter.byID[id] = rule
		linter.rules = append(linter.rules, rule)
	}
	return linter, nil
}

// Rules returns the registered rules in registration order.
func (l *Linter) Rules() []ports.Rule {
	return append([]ports.Rule(nil), l.rules...)
}

func (l *Linter) Infos() []types.RuleInfo {
	out := make([]types.RuleInfo, 0, len(l.rules))
	for _, rule := range l.rules {
		out = append(out, infoOf(rule))
	}
	return out
}

// Rule looks up one rule by id.
func (l *Linter) Rule(id string) (ports.Rule, bool) {
	rule, ok := l.byID[id]
	return rule, ok
}

// Select computes the enabled rule ids: every registered rule when
// include is empty, minus the ids in exclude. Unknown ids in either list
// are rejected.
func (l *Linter) Select(include []string, exclude []string) ([]string, error) {
	if err := l.checkKnown(include); err != nil {
		return nil, err
	}
	if err := l.checkKnown(exclude); err != nil {
		return nil, err
	}
	skip := map[string]struct{}{}
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	candidates := include
	if len(candidates) == 0 {
		for _, rule := range l.rules {
			candidates = append(candidates, rule.ID())
		}
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := skip[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (l *Linter) checkKnown(ids []string) error {
	var unknown []string
	for _, id := range ids {
		if _, ok := l.byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown checks: %v", unknown))
}

// RunChecks evaluates the rules named by ruleIDs. Rules are grouped by
// entity kind and every stream is walked once. A rule that panics on an
// entity loses that single result; the run carries on. The result holds
// an entry, possibly empty, for every requested rule.
func (l *Linter) RunChecks(ctx context.Context, ruleIDs []string, streams types.EntityStreams) (map[string][]types.CheckIssue, error) {
	if err := l.checkKnown(ruleIDs); err != nil {
		return nil, err
	}
	byKind := map[types.EntityKind][]ports.Rule{}
	results := make(map[string][]types.CheckIssue, len(ruleIDs))
	for _, id := range ruleIDs {
		if _, ok := results[id]; ok {
			continue
		}
		rule := l.byID[id]
		byKind[rule.Kind()] = append(byKind[rule.Kind()], rule)
		results[id] = []types.CheckIssue{}
	}

	for _, kind := range types.EntityKinds {
		rules := byKind[kind]
		if len(rules) == 0 {
			continue
		}
		entities := streams.Stream(kind)
		log.Ctx(ctx).Debug().
			Str("kind", string(kind)).
			Int("rules", len(rules)).
			Int("entities", len(entities)).
			Msg("running checks")
		for _, entity := range entities {
			for _, rule := range rules {
				if issue, ok := runRule(ctx, rule, entity); ok {
					results[rule.ID()] = append(results[rule.ID()], issue)
				}
			}
		}
	}
	return results, nil
}

func runRule(ctx context.Context, rule ports.Rule, entity types.Entity) (issue types.CheckIssue, found bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().
				Str("rule", rule.ID()).
				Str("entity", entity.String()).
				Interface("panic", r).
				Msg("check failed")
			issue, found = types.CheckIssue{}, false
		}
	}()
	issue, found = rule.Check(ctx, entity)
	if found && issue.Entity == nil {
		issue.Entity = entity
	}
	return issue, found
}

func infoOf(rule ports.Rule) types.RuleInfo {
	return types.RuleInfo{ID: rule.ID(), Header: rule.Header(), Kind: rule.Kind()}
}
