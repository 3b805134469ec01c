package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) *redis.StatusCmd {
	p.calls++
	if p.calls <= p.failures {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	return redis.NewStatusResult("PONG", nil)
}

func testOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  time.Millisecond,
		MaxWait:        5 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
	}
}

func TestWaitReadyRetries(t *testing.T) {
	p := &flakyPinger{failures: 3}

	if err := waitReady(context.Background(), p, testOptions(), logger.NewNop()); err != nil {
		t.Fatalf("waitReady() error = %v", err)
	}
	if p.calls != 4 {
		t.Errorf("waitReady() pinged %d times, want 4", p.calls)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	opts := testOptions()
	opts.ConnectTimeout = 20 * time.Millisecond

	err := waitReady(context.Background(), p, opts, logger.NewNop())
	if err == nil {
		t.Fatal("waitReady() should fail when redis never answers")
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *ConnectOptions)
		wantErr bool
	}{
		{name: "valid", mutate: func(o *ConnectOptions) {}},
		{name: "empty addr", mutate: func(o *ConnectOptions) { o.Addr = "" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(o *ConnectOptions) { o.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero retry interval", mutate: func(o *ConnectOptions) { o.RetryInterval = 0 }, wantErr: true},
		{name: "zero max wait", mutate: func(o *ConnectOptions) { o.MaxWait = 0 }, wantErr: true},
		{name: "zero ping timeout", mutate: func(o *ConnectOptions) { o.PingTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			tt.mutate(&o)
			err := o.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
