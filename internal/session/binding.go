package session

import "sync"

// Binding keeps a gate decision current: it evaluates the requirement
// immediately and re-evaluates on every session transition the provider
// announces, so a capability revoked mid-session is re-gated without a
// reload.
type Binding struct {
	mu          sync.RWMutex
	provider    Provider
	requirement Requirement
	decision    Decision
	notify      func(Decision)
	unsubscribe func()
	closed      bool
}

// Bind evaluates the requirement against the provider's current actor and
// subscribes for re-evaluation. The notify callback fires on every
// re-evaluation, including the initial one.
func Bind(provider Provider, requirement Requirement, notify func(Decision)) *Binding {
	b := &Binding{
		provider:    provider,
		requirement: requirement,
		notify:      notify,
	}

	b.unsubscribe = provider.Subscribe(func(Event) {
		b.reevaluate()
	})
	b.reevaluate()

	return b
}

// Current returns the most recent decision.
func (b *Binding) Current() Decision {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.decision
}

// Close stops re-evaluation.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	unsubscribe := b.unsubscribe
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (b *Binding) reevaluate() {
	actor, resolved := b.provider.CurrentActor()
	decision := Evaluate(actor, resolved, b.requirement)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	changed := b.decision != decision
	b.decision = decision
	notify := b.notify
	b.mu.Unlock()

	if notify != nil && changed {
		notify(decision)
	}
}
