package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/notify"
)

func TestNewNotifier(t *testing.T) {
	n, closeFn := newNotifier(config.Config{NotifyEnabled: false})
	assert.Equal(t, notify.Discard{}, n)
	closeFn()

	n, closeFn = newNotifier(config.Config{NotifyEnabled: true, NotifyPortOffset: 1, NotifyWriteTimeout: time.Second})
	defer closeFn()
	assert.IsType(t, &notify.UDPNotifier{}, n)
}
