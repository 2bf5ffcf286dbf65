package bot

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/tbxark/hrbot/agent"
)

// DefaultMailboxSize bounds the messages waiting behind an in-flight turn.
const DefaultMailboxSize = 16

var ErrBusy = errors.New("conversation mailbox is full")

type queuedRequest struct {
	ctx context.Context
	req *agent.Request
}

// Dispatcher runs turns one at a time per conversation. Each conversation
// gets a FIFO mailbox drained by its own worker goroutine; the worker exits
// as soon as the mailbox is empty, so idle conversations cost nothing.
type Dispatcher struct {
	mu        sync.Mutex
	mailboxes map[string]*list.List
	maxSize   int
	process   func(ctx context.Context, req *agent.Request)
	wg        sync.WaitGroup
}

func NewDispatcher(maxSize int, process func(ctx context.Context, req *agent.Request)) *Dispatcher {
	if maxSize <= 0 {
		maxSize = DefaultMailboxSize
	}
	return &Dispatcher{
		mailboxes: make(map[string]*list.List),
		maxSize:   maxSize,
		process:   process,
	}
}

// Enqueue schedules req behind any pending request of the same conversation.
// It returns ErrBusy without queueing when the mailbox is full.
func (d *Dispatcher) Enqueue(ctx context.Context, req *agent.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, running := d.mailboxes[req.ConversationID]
	if !running {
		l = list.New()
		d.mailboxes[req.ConversationID] = l
	}
	if l.Len() >= d.maxSize {
		return ErrBusy
	}
	l.PushBack(&queuedRequest{ctx: ctx, req: req})
	if !running {
		d.wg.Add(1)
		go d.drain(req.ConversationID, l)
	}
	return nil
}

func (d *Dispatcher) drain(id string, l *list.List) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		front := l.Front()
		if front == nil {
			delete(d.mailboxes, id)
			d.mu.Unlock()
			return
		}
		l.Remove(front)
		d.mu.Unlock()

		item := front.Value.(*queuedRequest)
		d.process(item.ctx, item.req)
	}
}

// Pending reports how many requests wait behind the running one.
func (d *Dispatcher) Pending(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok := d.mailboxes[id]; ok {
		return l.Len()
	}
	return 0
}

// Active reports how many conversations currently have a worker.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}

// Wait blocks until every worker has drained its mailbox.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
