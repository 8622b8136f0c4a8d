package cart

import (
	"context"
	"fmt"
)

// Remote is the slice of the backend client the cart commands need.
type Remote interface {
	IncreaseCartLine(ctx context.Context, id string) error
	DecreaseCartLine(ctx context.Context, id string) error
	RemoveCartLine(ctx context.Context, id string) error
}

// Command is one optimistic cart mutation. The local apply returns its own
// inverse, so the revert can never drift from what was actually applied.
type Command struct {
	Name   string
	apply  func() (revert func())
	remote func(ctx context.Context) error
}

// Execute applies the mutation locally, runs the remote call, and walks the
// local change back when the call fails. An apply that refuses the mutation
// returns no revert; the remote call is then skipped, so the backend never
// moves past what the mirror allows.
func (c Command) Execute(ctx context.Context) error {
	revert := c.apply()
	if revert == nil {
		return nil
	}
	if err := c.remote(ctx); err != nil {
		revert()
		return fmt.Errorf("cart: %s reverted: %w", c.Name, err)
	}
	return nil
}

// Serializer runs a mirror mutation with the owning session's lock held.
type Serializer func(func())

// Serialize returns a command whose local apply and revert both run through
// the serializer. The remote call stays outside it: only the mirror mutation
// needs the session lock, not the network round-trip.
func (c Command) Serialize(run Serializer) Command {
	if run == nil {
		return c
	}
	apply := c.apply
	c.apply = func() func() {
		var revert func()
		run(func() { revert = apply() })
		if revert == nil {
			return nil
		}
		return func() { run(revert) }
	}
	return c
}

// Increase builds the optimistic quantity-increase command for a line.
func Increase(m *Mirror, remote Remote, id string) Command {
	return Command{
		Name:   "increase",
		apply:  func() func() { return m.increase(id) },
		remote: func(ctx context.Context) error { return remote.IncreaseCartLine(ctx, id) },
	}
}

// Decrease builds the optimistic quantity-decrease command for a line.
func Decrease(m *Mirror, remote Remote, id string) Command {
	return Command{
		Name:   "decrease",
		apply:  func() func() { return m.decrease(id) },
		remote: func(ctx context.Context) error { return remote.DecreaseCartLine(ctx, id) },
	}
}

// Remove builds the optimistic line-removal command.
func Remove(m *Mirror, remote Remote, id string) Command {
	return Command{
		Name:   "remove",
		apply:  func() func() { return m.remove(id) },
		remote: func(ctx context.Context) error { return remote.RemoveCartLine(ctx, id) },
	}
}
