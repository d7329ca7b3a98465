package state

import (
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/uyizlang/uyizlangbot/core/telegram/teletest"
)

const (
	stAsk    State = "test.ask"
	stAnswer State = "test.answer"
)

func TestDispatchRoutesByState(t *testing.T) {
	m := NewMemoryManager()
	var got []string
	m.Handle(stAsk, func(c tele.Context) error {
		got = append(got, "ask:"+c.Text())
		m.SetState(c.Sender().ID, stAnswer)
		return nil
	})
	m.Handle(stAnswer, func(c tele.Context) error {
		got = append(got, "answer:"+c.Text())
		m.Clear(c.Sender().ID)
		return nil
	})

	c := teletest.NewContext(7, "hello")
	if handled, _ := m.Dispatch(c); handled {
		t.Fatal("idle user must not be dispatched")
	}

	m.SetState(7, stAsk)
	if handled, err := m.Dispatch(c); !handled || err != nil {
		t.Fatalf("dispatch ask: handled=%v err=%v", handled, err)
	}
	if handled, _ := m.Dispatch(c.Next("42")); !handled {
		t.Fatal("dispatch answer not handled")
	}
	if m.InProgress(7) {
		t.Fatal("session should be cleared")
	}
	if len(got) != 2 || got[0] != "ask:hello" || got[1] != "answer:42" {
		t.Fatalf("calls = %v", got)
	}
}

func TestDispatchUnknownState(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, "nowhere")
	if handled, err := m.Dispatch(teletest.NewContext(1, "x")); handled || err != nil {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
}

func TestTempTyped(t *testing.T) {
	m := NewMemoryManager()
	m.SetTemp(3, "rooms", 4)
	if v, ok := Temp[int](m, 3, "rooms"); !ok || v != 4 {
		t.Fatalf("Temp[int] = %v %v", v, ok)
	}
	if _, ok := Temp[string](m, 3, "rooms"); ok {
		t.Fatal("wrong type must report false")
	}
	if _, ok := Temp[int](m, 4, "rooms"); ok {
		t.Fatal("other user must not see temp data")
	}
	m.Clear(3)
	if _, ok := m.GetTemp(3, "rooms"); ok {
		t.Fatal("clear must drop temp data")
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	m := NewMemoryManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update(9, func(s *Session) {
				n, _ := s.TempData["n"].(int)
				s.TempData["n"] = n + 1
			})
		}()
	}
	wg.Wait()
	if v, _ := Temp[int](m, 9, "n"); v != 50 {
		t.Fatalf("n = %d, want 50", v)
	}
}
