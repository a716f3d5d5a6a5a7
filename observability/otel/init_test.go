package otel

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" authorization=Bearer x , empty=, =skip,novalue, tenant = shop ")
	if len(got) != 3 {
		t.Fatalf("unexpected headers: %v", got)
	}
	if got["authorization"] != "Bearer x" || got["tenant"] != "shop" || got["empty"] != "" {
		t.Fatalf("unexpected headers: %v", got)
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	if _, err := Init(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing service name to fail")
	}
	shutdown, err := Init(context.Background(), Config{ServiceName: "loyaltyd"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
