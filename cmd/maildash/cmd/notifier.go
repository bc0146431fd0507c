package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/ajramos/maildash/internal/services"
)

// cliNotifier prints dashboard notifications for headless commands and
// remembers whether any of them reported a failure.
type cliNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	failed []string
}

func newCLINotifier(out io.Writer) *cliNotifier {
	return &cliNotifier{out: out}
}

func (n *cliNotifier) Notify(kind services.NotifyKind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch kind {
	case services.NotifyError, services.NotifyWarning:
		n.failed = append(n.failed, text)
		fmt.Fprintf(n.out, "%s: %s\n", kind, text)
	case services.NotifySuccess:
		fmt.Fprintln(n.out, text)
	}
}

// Err returns the first failure notified, or nil.
func (n *cliNotifier) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.failed) == 0 {
		return nil
	}
	return fmt.Errorf("%s", n.failed[0])
}
