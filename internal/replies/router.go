// Package replies routes incoming direct messages to the negotiations
// waiting for a "ja"/"nein" answer from their author.
package replies

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gustav-de-Mando/KuratorV1/internal/common"
)

// Reply is a parsed answer.
type Reply struct {
	Affirmative bool
	Reason      string
}

// Incoming is a chat message as seen by the router.
type Incoming struct {
	AuthorID string
	Direct   bool
	Content  string
}

var (
	affirmative = []string{"ja", "yes"}
	negative    = []string{"nein", "no"}
)

// Parse recognises an affirmative or negative token at the start of
// content. Text after a negative token is returned as the reason.
func Parse(content string) (Reply, bool) {
	s := strings.TrimSpace(content)
	lower := strings.ToLower(s)

	for _, tok := range affirmative {
		if hasToken(lower, tok) {
			return Reply{Affirmative: true}, true
		}
	}
	for _, tok := range negative {
		if hasToken(lower, tok) {
			reason := strings.TrimLeft(s[len(tok):], " \t\n,.:;-!")
			return Reply{Reason: strings.TrimSpace(reason)}, true
		}
	}
	return Reply{}, false
}

func hasToken(s, tok string) bool {
	if !strings.HasPrefix(s, tok) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(s[len(tok):])
	return next == utf8.RuneError || !unicode.IsLetter(next)
}

type wait struct {
	negotiationID string
	ch            chan Reply
}

// Router holds one FIFO queue of pending waits per party.
type Router struct {
	mu    sync.Mutex
	queue map[string][]*wait
}

func NewRouter() *Router {
	return &Router{queue: make(map[string][]*wait)}
}

// Await blocks until partyID answers negotiationID, the timeout elapses
// (common.ErrReplyTimeout) or ctx is cancelled. The timeout is measured
// from the call; unrelated messages do not extend it.
func (r *Router) Await(ctx context.Context, negotiationID, partyID string, timeout time.Duration) (Reply, error) {
	w := &wait{negotiationID: negotiationID, ch: make(chan Reply, 1)}

	r.mu.Lock()
	for _, existing := range r.queue[partyID] {
		if existing.negotiationID == negotiationID {
			r.mu.Unlock()
			return Reply{}, common.ErrorAlreadyExists
		}
	}
	r.queue[partyID] = append(r.queue[partyID], w)
	r.mu.Unlock()

	defer r.drop(partyID, w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-w.ch:
		return reply, nil
	case <-timer.C:
		// a reply may have been routed in the same instant
		select {
		case reply := <-w.ch:
			return reply, nil
		default:
		}
		return Reply{}, common.ErrReplyTimeout
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (r *Router) drop(partyID string, w *wait) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.queue[partyID]
	for i, x := range q {
		if x == w {
			q = append(q[:i], q[i+1:]...)
			break
		}
	}
	if len(q) == 0 {
		delete(r.queue, partyID)
	} else {
		r.queue[partyID] = q
	}
}

// Dispatch hands msg to the oldest wait of its author. It reports whether
// the message was consumed; non-direct messages, authors nobody waits for
// and messages without a recognised token are ignored.
func (r *Router) Dispatch(msg Incoming) bool {
	if !msg.Direct {
		return false
	}
	reply, ok := Parse(msg.Content)
	if !ok {
		return false
	}

	r.mu.Lock()
	q := r.queue[msg.AuthorID]
	if len(q) == 0 {
		r.mu.Unlock()
		return false
	}
	w := q[0]
	if len(q) == 1 {
		delete(r.queue, msg.AuthorID)
	} else {
		r.queue[msg.AuthorID] = q[1:]
	}
	r.mu.Unlock()

	select {
	case w.ch <- reply:
	default:
	}
	return true
}

// Pending returns the number of waits registered for partyID.
func (r *Router) Pending(partyID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue[partyID])
}
