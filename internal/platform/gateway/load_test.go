package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medflow/medflow/pkg/apperror"
)

func TestLoadAll_Success(t *testing.T) {
	a := newWidgetGateway(NewMemoryStore("widget", widget{Name: "a"}, widget{Name: "b"}), nil)
	b := newWidgetGateway(NewMemoryStore("widget", widget{Name: "c"}), nil)

	var as, bs []widget
	if err := LoadAll(context.Background(), Into(a, &as), Into(b, &bs)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(as) != 2 || len(bs) != 1 {
		t.Errorf("expected 2 and 1 records, got %d and %d", len(as), len(bs))
	}
}

func TestLoadAll_FailFast(t *testing.T) {
	ok := newWidgetGateway(NewMemoryStore("widget", widget{Name: "a"}), nil)
	broken := New[widget](&failingStore{MemoryStore: NewMemoryStore[widget]("widget"), err: errors.New("down")},
		Options[widget]{Kind: "broken", Logger: zerolog.Nop()})

	var as, bs []widget
	err := LoadAll(context.Background(), Into(ok, &as), Into(broken, &bs))
	if !apperror.Is(err, apperror.KindLoadFailure) {
		t.Fatalf("expected LOAD_FAILURE, got %v", err)
	}
	if bs != nil {
		t.Errorf("failed destination must stay untouched, got %v", bs)
	}
}

// waitingStore lists only after its context ends, so it is always still
// running when a sibling load fails.
type waitingStore struct {
	*MemoryStore[widget]
}

func (w *waitingStore) List(ctx context.Context) ([]widget, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadAll_FailFastAnnouncesOnlyTheFailure(t *testing.T) {
	n := &recordingNotifier{}
	slow := New[widget](&waitingStore{MemoryStore: NewMemoryStore[widget]("widget")},
		Options[widget]{Kind: "healthy", Notifier: n, Logger: zerolog.Nop()})
	broken := New[widget](&failingStore{MemoryStore: NewMemoryStore[widget]("widget"), err: errors.New("down")},
		Options[widget]{Kind: "broken", Notifier: n, Logger: zerolog.Nop()})

	var as, bs []widget
	err := LoadAll(context.Background(), Into(slow, &as), Into(broken, &bs))
	if !apperror.Is(err, apperror.KindLoadFailure) {
		t.Fatalf("expected LOAD_FAILURE, got %v", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) != 1 {
		t.Fatalf("expected exactly one notice, got %+v", n.notices)
	}
	if n.notices[0].Type != NoticeLoadFailed || n.notices[0].Entity != "broken" {
		t.Errorf("expected load_failed for broken, got %+v", n.notices[0])
	}
}

func TestGetAll_CancelledContextIsNotAnnounced(t *testing.T) {
	n := &recordingNotifier{}
	g := newWidgetGateway(NewMemoryStore("widget", widget{Name: "a"}), n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := g.GetAll(ctx)
	if res.OK() {
		t.Fatal("expected failed load result")
	}
	if !apperror.Is(res.Err(), apperror.KindLoadFailure) {
		t.Errorf("expected LOAD_FAILURE, got %v", res.Err())
	}
	if len(n.notices) != 0 {
		t.Errorf("expected no notices, got %+v", n.notices)
	}
}
