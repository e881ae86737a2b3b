package rabbitmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/config"
)

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second))
	assert.Equal(t, 16*time.Second, nextBackoff(8*time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(20*time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff))
}

func TestUnconnected(t *testing.T) {
	c := NewConnection(&config.RabbitMQConfig{URL: "amqp://localhost"}, zap.NewNop())

	assert.False(t, c.IsHealthy())
	assert.Error(t, c.SetQoS(10))
	_, err := c.Consume("cms.publish", "tag")
	assert.Error(t, err)
	assert.Error(t, c.Cancel("tag"))

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}
