package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan LightCommandEvent, 1)

	unsub := bus.Subscribe(func(e LightCommandEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(LightCommandEvent{Kind: "flash_green", RateMs: 100, Source: "test"})

	select {
	case got := <-received:
		if got.Kind != "flash_green" || got.RateMs != 100 {
			t.Errorf("got %+v, want kind=flash_green rate=100", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	received1 := make(chan LightStateChangedEvent, 1)
	received2 := make(chan LightStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e LightStateChangedEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e LightStateChangedEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(LightStateChangedEvent{From: "off", To: "flashing_orange"})

	for i, ch := range []chan LightStateChangedEvent{received1, received2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive event", i+1)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan LightCommandDroppedEvent, 1)

	unsub := bus.Subscribe(func(e LightCommandDroppedEvent) {
		received <- e
	})

	bus.Publish(LightCommandDroppedEvent{Kind: "flash_green"})
	<-received

	unsub()

	bus.Publish(LightCommandDroppedEvent{Kind: "flash_orange"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypesAreIsolated(t *testing.T) {
	bus := New()
	reverted := make(chan LightStateRevertedEvent, 1)

	unsub := bus.Subscribe(func(e LightStateRevertedEvent) { reverted <- e })
	defer unsub()

	bus.Publish(LightStateChangedEvent{To: "off"})

	select {
	case e := <-reverted:
		t.Fatalf("revert subscriber received %+v", e)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("expected non-nil unsubscribe func")
	}
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan LightStateRevertedEvent, 1)

	unsub := SubscribeToChannel(bus, ch)
	defer unsub()

	bus.Publish(LightStateRevertedEvent{Expired: "flashing_green", Restored: "off", Tick: 50})

	select {
	case e := <-ch:
		if e.Restored != "off" || e.Tick != 50 {
			t.Errorf("got %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel delivery")
	}
}

func TestEventTypesAreDistinct(t *testing.T) {
	seen := make(map[uint32]string)
	for _, ev := range []Event{
		LightCommandEvent{},
		LightStateChangedEvent{},
		LightStateRevertedEvent{},
		LightCommandDroppedEvent{},
	} {
		name, _ := json.Marshal(ev)
		if prev, dup := seen[ev.Type()]; dup {
			t.Errorf("type %d shared by %s and %s", ev.Type(), prev, name)
		}
		seen[ev.Type()] = string(name)
	}
}
