package app

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

func TestRunReturnsWhenCancelledBeforeServing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	a := &App{Log: log, Router: gin.New(), Cfg: Config{Port: "0"}}

	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		done := make(chan error, 1)
		go func() { done <- a.Run(ctx) }()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("run %d: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("run %d: Run blocked after an early signal", i)
		}
	}
}
