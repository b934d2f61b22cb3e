package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func stubEngine(name string, result *FetchResult, err error, calls *atomic.Int32) Engine {
	return New(name, func(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
		if calls != nil {
			calls.Add(1)
		}
		if err != nil {
			return nil, err
		}
		r := *result
		return &r, nil
	})
}

func TestDispatch_FirstEngineWins(t *testing.T) {
	memory := NewDomainMemory(time.Minute)
	defer memory.Stop()

	fast := stubEngine("fast", &FetchResult{HTML: "<html>fast</html>"}, nil, nil)
	slow := stubEngine("slow", &FetchResult{HTML: "<html>slow</html>"}, nil, nil)

	d := NewDispatcher([]Engine{fast, slow}, []time.Duration{0, time.Second}, memory)

	result, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.EngineName != "fast" {
		t.Errorf("winner = %q, want fast", result.EngineName)
	}
}

func TestDispatch_EscalatesOnFailure(t *testing.T) {
	memory := NewDomainMemory(time.Minute)
	defer memory.Stop()

	failing := stubEngine("http", nil, errors.New("needs rendering"), nil)
	browser := stubEngine("browser", &FetchResult{HTML: "<html>rendered</html>"}, nil, nil)

	d := NewDispatcher([]Engine{failing, browser}, []time.Duration{0, 5 * time.Millisecond}, memory)

	result, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://spa.example.com/x"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.EngineName != "browser" {
		t.Errorf("winner = %q, want browser", result.EngineName)
	}
}

func TestDispatch_AllFail(t *testing.T) {
	memory := NewDomainMemory(time.Minute)
	defer memory.Stop()

	a := stubEngine("a", nil, errors.New("down"), nil)
	b := stubEngine("b", nil, errors.New("also down"), nil)

	d := NewDispatcher([]Engine{a, b}, []time.Duration{0, 0}, memory)

	if _, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://dead.example.com/"}); err == nil {
		t.Fatal("expected an error when every engine fails")
	}
}

func TestDispatch_RemembersWinnerPerDomain(t *testing.T) {
	memory := NewDomainMemory(time.Minute)
	defer memory.Stop()

	var httpCalls, browserCalls atomic.Int32
	httpEngine := stubEngine("http", nil, errors.New("shell"), &httpCalls)
	browserEngine := stubEngine("browser", &FetchResult{HTML: "<html>ok</html>"}, nil, &browserCalls)

	d := NewDispatcher([]Engine{httpEngine, browserEngine}, []time.Duration{0, time.Millisecond}, memory)

	req := &FetchRequest{URL: "https://app.example.com/feed"}
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if got := memory.Get("app.example.com"); got != "browser" {
		t.Fatalf("memory = %q, want browser", got)
	}

	httpCalls.Store(0)
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if httpCalls.Load() != 0 {
		t.Error("remembered domain should skip the HTTP engine")
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	memory := NewDomainMemory(10 * time.Millisecond)
	defer memory.Stop()

	memory.Set("example.com", "http")
	if got := memory.Get("example.com"); got != "http" {
		t.Fatalf("Get = %q, want http", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := memory.Get("example.com"); got != "" {
		t.Errorf("expired entry returned %q", got)
	}
}

func TestDomainMemory_Delete(t *testing.T) {
	memory := NewDomainMemory(time.Minute)
	defer memory.Stop()

	memory.Set("example.com", "browser")
	memory.Delete("example.com")
	if got := memory.Get("example.com"); got != "" {
		t.Errorf("deleted entry returned %q", got)
	}
}
