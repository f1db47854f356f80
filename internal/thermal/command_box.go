package thermal

import "sync"

// CommandBox is a single-slot mailbox between request handlers and the
// control loop. A newer command replaces an unconsumed one.
type CommandBox struct {
	mu  sync.Mutex
	cmd Command
	set bool
}

// Put stores cmd, overwriting any pending command. It reports whether a
// pending command was replaced.
func (b *CommandBox) Put(cmd Command) (replaced bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	replaced = b.set
	b.cmd = cmd
	b.set = true
	return replaced
}

// Take removes and returns the pending command, if any.
func (b *CommandBox) Take() (Command, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return Command{}, false
	}
	cmd := b.cmd
	b.cmd = Command{}
	b.set = false
	return cmd, true
}
