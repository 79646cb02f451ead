package utils

import (
	"testing"
	"time"

	"golang-crypto-trader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoSafeRecoversPanic(t *testing.T) {
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	done := make(chan struct{})
	GoSafe(log, func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run to completion")
	}
}

func TestGoSafeRunsFunction(t *testing.T) {
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	result := make(chan int, 1)
	GoSafe(log, func() { result <- 42 })

	select {
	case v := <-result:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestFormatEventTime(t *testing.T) {
	ts := time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, "(10:05:00) 31-08-2026", FormatEventTime(ts))
}
